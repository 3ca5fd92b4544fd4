package items

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peermarket/controllers"
	"peermarket/middleware"
)

// RegisterPublic registers the browse endpoint; anyone may view listings.
func RegisterPublic(r *gin.Engine, db *gorm.DB) {
	r.GET("/items", controllers.ListItems(db))
}

// RegisterProtected registers posting and the AI listing-draft endpoint.
func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/items", middleware.RateLimit(), controllers.CreateItem(db))

	visionCtrl := controllers.NewVisionController()
	g.POST("/ai-analyze-image", middleware.RateLimit(), visionCtrl.AnalyzeImage)
}

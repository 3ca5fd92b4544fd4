package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"peermarket/chat"
	"peermarket/middleware"

	authRoutes "peermarket/routes/auth"
	chatRoutes "peermarket/routes/chat"
	itemRoutes "peermarket/routes/items"
	uploadsRoutes "peermarket/routes/uploads"
	websocketRoutes "peermarket/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "marketplace + chat backend running"})
	})

	// messaging core, shared by the websocket transport and the REST reads
	store := chat.NewStore(db)
	registry := chat.NewRegistry()
	broadcaster := chat.NewBroadcaster(store, registry)

	uploadsRoutes.Register(r)
	websocketRoutes.Register(r, registry, broadcaster)
	authRoutes.RegisterPublic(r, db)
	itemRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected)
	itemRoutes.RegisterProtected(protected, db)
	chatRoutes.Register(protected, store)
}

package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"peermarket/pkg/services"
)

type VisionController struct {
	visionService *services.VisionService
}

func NewVisionController() *VisionController {
	return &VisionController{
		visionService: services.NewVisionService(),
	}
}

type AnalyzeImageRequest struct {
	Base64Image string `json:"base64Image" binding:"required"`
}

// AnalyzeImage handles POST /ai-analyze-image. Returns a draft title and
// description for the listing form. Falls back to a local placeholder draft
// when the vision service is disabled or failing, so the form is never left
// blank because of an upstream outage.
func (ctrl *VisionController) AnalyzeImage(c *gin.Context) {
	var req AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "base64Image is required"})
		return
	}

	// tolerate full data URLs from the client
	image := req.Base64Image
	if i := strings.Index(image, ","); i >= 0 && strings.HasPrefix(image, "data:") {
		image = image[i+1:]
	}

	if !ctrl.visionService.IsEnabled() {
		c.JSON(http.StatusOK, services.AnalyzeImageLocal())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	draft, err := ctrl.visionService.AnalyzeImage(ctx, image)
	if err != nil {
		log.Printf("[vision] analyze failed, serving local draft: %v", err)
		c.JSON(http.StatusOK, services.AnalyzeImageLocal())
		return
	}

	c.JSON(http.StatusOK, draft)
}

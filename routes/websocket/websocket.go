package websocket

import (
	"github.com/gin-gonic/gin"

	"peermarket/chat"
	"peermarket/controllers"
	"peermarket/middleware"
)

func Register(r *gin.Engine, registry *chat.Registry, broadcaster *chat.Broadcaster) {
	r.GET("/ws/chat", middleware.RateLimit(), controllers.ChatWS(registry, broadcaster))
}

package chat

import (
	"github.com/gin-gonic/gin"

	"peermarket/chat"
	"peermarket/controllers"
)

// Register registers the chat read-side routes (protected): history backfill
// and the conversation partner list.
func Register(g *gin.RouterGroup, store *chat.Store) {
	g.GET("/chat-history", controllers.ChatHistory(store))
	g.GET("/my-chats/:username", controllers.MyChats(store))
}

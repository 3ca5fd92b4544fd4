package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"peermarket/chat"
	"peermarket/middleware"
	"peermarket/models"
)

// ChatHistory handles GET /chat-history?user1=&user2=. Backfill read used
// when a conversation view opens; it does not bind the caller to the room,
// the websocket join does that independently.
func ChatHistory(store *chat.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		self := middleware.CurrentUsername(c)
		user1 := strings.TrimSpace(c.Query("user1"))
		user2 := strings.TrimSpace(c.Query("user2"))

		if user1 != self && user2 != self {
			c.JSON(http.StatusForbidden, gin.H{"msg": "not a participant of this conversation"})
			return
		}

		msgs, err := store.History(c.Request.Context(), user1, user2)
		if err != nil {
			status, msg := chatErrorStatus(err)
			c.JSON(status, gin.H{"msg": msg})
			return
		}

		c.JSON(http.StatusOK, messagesResponse(msgs))
	}
}

// MyChats handles GET /my-chats/:username — everyone the user has exchanged
// at least one message with.
func MyChats(store *chat.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		self := middleware.CurrentUsername(c)
		username := strings.TrimSpace(c.Param("username"))
		if username != self {
			c.JSON(http.StatusForbidden, gin.H{"msg": "can only list your own chats"})
			return
		}

		partners, err := store.DistinctPartners(c.Request.Context(), username)
		if err != nil {
			status, msg := chatErrorStatus(err)
			c.JSON(status, gin.H{"msg": msg})
			return
		}

		c.JSON(http.StatusOK, partners)
	}
}

func messagesResponse(msgs []models.ChatMessage) []gin.H {
	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageJSON(&m))
	}
	return out
}

// messageJSON is the wire shape of one chat message, shared by the REST
// backfill and the websocket push so clients render both the same way.
func messageJSON(m *models.ChatMessage) gin.H {
	return gin.H{
		"id":        m.ID,
		"sender":    m.Sender,
		"receiver":  m.Receiver,
		"message":   m.Body,
		"timestamp": m.SentAt,
	}
}

func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrSameParticipant):
		return http.StatusBadRequest, "cannot chat with yourself"
	case errors.Is(err, chat.ErrBadParticipant):
		return http.StatusBadRequest, "invalid participant"
	case errors.Is(err, chat.ErrEmptyBody):
		return http.StatusBadRequest, "message is required"
	default:
		return http.StatusInternalServerError, "chat storage error"
	}
}

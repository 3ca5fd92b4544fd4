package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"peermarket/chat"
	"peermarket/middleware"
	"peermarket/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

const (
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second
	wsPingInterval  = 45 * time.Second
	wsSendBuffer    = 64
)

type wsFrame struct {
	Type     string `json:"type"`
	Peer     string `json:"peer,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Body     string `json:"body,omitempty"`
}

// wsClient is one live chat session. It implements chat.Conn: the
// broadcaster hands it persisted messages, which are queued on the outbound
// channel and written by a single writer goroutine. The queue never blocks
// the broadcaster; a session that cannot keep up just misses the live push
// and reloads from history.
type wsClient struct {
	username string
	out      chan gin.H
	done     chan struct{}
	once     sync.Once
}

func newWSClient(username string) *wsClient {
	return &wsClient{
		username: username,
		out:      make(chan gin.H, wsSendBuffer),
		done:     make(chan struct{}),
	}
}

func (w *wsClient) Deliver(m *models.ChatMessage) bool {
	evt := messageJSON(m)
	evt["type"] = "message"
	return w.enqueue(evt)
}

func (w *wsClient) enqueue(evt gin.H) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.out <- evt:
		return true
	case <-w.done:
		return false
	default:
		return false
	}
}

func (w *wsClient) close() {
	w.once.Do(func() { close(w.done) })
}

// ChatWS handles the WebSocket chat endpoint.
// Client protocol (JSON messages):
//
//	-> {type: "join", peer: string}       bind this session to the conversation with peer
//	-> {type: "leave", peer: string}      unbind from that conversation
//	-> {type: "message", receiver: string, body: string}
//	<- {type: "joined", peer: string}
//	<- {type: "message", id, sender, receiver, message, timestamp}
//	<- {type: "error", error: string}
//
// Joining does not backfill; clients fetch /chat-history separately. All
// bindings die with the connection, a reconnecting client re-joins.
func ChatWS(registry *chat.Registry, broadcaster *chat.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		userID, username, _, err := middleware.ParseToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		// Concurrency guard per user
		release := middleware.AcquireUserSlot(userID)
		defer release()

		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})

		client := newWSClient(username)
		defer func() {
			// disconnect: unbind everything before the session handle dies
			client.close()
			registry.LeaveAll(client)
		}()

		// Writer goroutine owns all writes: queued events plus keepalive pings.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case evt := <-client.out:
					_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
					if err := conn.WriteJSON(evt); err != nil {
						log.Printf("[ws] write error for %s: %v", username, err)
						return
					}
				case <-ticker.C:
					_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-client.done:
					return
				}
			}
		}()

		for {
			mt, msgBytes, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[ws] read error for %s: %v", username, err)
				}
				break
			}
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}

			var frame wsFrame
			if err := json.Unmarshal(msgBytes, &frame); err != nil {
				client.enqueue(gin.H{"type": "error", "error": "invalid frame"})
				continue
			}

			switch strings.ToLower(strings.TrimSpace(frame.Type)) {
			case "join":
				roomID, err := chat.RoomID(username, frame.Peer)
				if err != nil {
					client.enqueue(gin.H{"type": "error", "error": chatErrorText(err)})
					continue
				}
				registry.Join(client, roomID)
				client.enqueue(gin.H{"type": "joined", "peer": strings.TrimSpace(frame.Peer)})

			case "leave":
				roomID, err := chat.RoomID(username, frame.Peer)
				if err != nil {
					client.enqueue(gin.H{"type": "error", "error": chatErrorText(err)})
					continue
				}
				registry.Leave(client, roomID)

			case "message":
				// Sender identity comes from the token, never the frame. The
				// append runs on its own context so a dying socket cannot
				// interrupt an in-flight write.
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				_, err := broadcaster.Send(ctx, username, frame.Receiver, frame.Body)
				cancel()
				if err != nil {
					client.enqueue(gin.H{"type": "error", "error": chatErrorText(err)})
				}

			default:
				client.enqueue(gin.H{"type": "error", "error": "unknown frame type"})
			}
		}

		client.close()
		<-writerDone
	}
}

func chatErrorText(err error) string {
	_, msg := chatErrorStatus(err)
	return msg
}

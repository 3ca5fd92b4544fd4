package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage is one persisted chat message between two users. The
// auto-increment ID doubles as the per-store sequence: it is strictly
// increasing, so it breaks ties when two messages land on the same SentAt.
// RoomID is the canonical conversation key (see chat.RoomID) and is what
// history queries filter on.
type ChatMessage struct {
	gorm.Model
	RoomID   string    `gorm:"size:170;index;not null"`
	Sender   string    `gorm:"size:80;index;not null"`
	Receiver string    `gorm:"size:80;index;not null"`
	Body     string    `gorm:"type:text;not null"`
	SentAt   time.Time `gorm:"index;not null"`
}

package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"peermarket/models"
)

// Store is the durable, append-only log of chat messages. It owns every
// persisted message; nothing else writes to the chat_messages table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append validates, stamps and durably writes one message, returning the
// stored record. SentAt is assigned here (server time, not client time) and
// the database assigns the strictly increasing id that defines the
// within-conversation order.
func (s *Store) Append(ctx context.Context, sender, receiver, body string) (*models.ChatMessage, error) {
	room, err := RoomID(sender, receiver)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	m := &models.ChatMessage{
		RoomID:   room,
		Sender:   strings.TrimSpace(sender),
		Receiver: strings.TrimSpace(receiver),
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return m, nil
}

// History returns every message exchanged between the pair, oldest first.
// Order is (sent_at, id); id is the tiebreaker when two messages share a
// timestamp. No messages is an empty slice, not an error.
func (s *Store) History(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	room, err := RoomID(a, b)
	if err != nil {
		return nil, err
	}
	list := []models.ChatMessage{}
	err = s.db.WithContext(ctx).
		Where("room_id = ?", room).
		Order("sent_at ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return list, nil
}

// DistinctPartners returns everyone the user has exchanged at least one
// message with, deduplicated and sorted for stable output.
func (s *Store) DistinctPartners(ctx context.Context, participant string) ([]string, error) {
	participant = strings.TrimSpace(participant)
	if participant == "" || strings.Contains(participant, Separator) {
		return nil, ErrBadParticipant
	}

	var sentTo, receivedFrom []string
	err := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("sender = ?", participant).
		Distinct().Pluck("receiver", &sentTo).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	err = s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("receiver = ?", participant).
		Distinct().Pluck("sender", &receivedFrom).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	seen := map[string]struct{}{}
	partners := []string{}
	for _, p := range append(sentTo, receivedFrom...) {
		if p == participant {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners, nil
}

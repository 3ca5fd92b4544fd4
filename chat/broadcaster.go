package chat

import (
	"context"
	"log"

	"peermarket/models"
)

// Broadcaster is the write path of the messaging core: persist first, then
// fan out to whoever is currently bound to the conversation.
type Broadcaster struct {
	store    *Store
	registry *Registry
}

func NewBroadcaster(store *Store, registry *Registry) *Broadcaster {
	return &Broadcaster{store: store, registry: registry}
}

// Send validates and durably appends the message, then pushes the stored
// record to every connection bound to the conversation. If the append fails
// the send fails as a whole and nothing is broadcast. Live delivery is
// best-effort: a connection that refuses the push (gone or backed up) is
// skipped, and the message stays retrievable through History.
func (b *Broadcaster) Send(ctx context.Context, sender, receiver, body string) (*models.ChatMessage, error) {
	m, err := b.store.Append(ctx, sender, receiver, body)
	if err != nil {
		return nil, err
	}
	for _, c := range b.registry.Members(m.RoomID) {
		if !c.Deliver(m) {
			log.Printf("[chat] dropped live delivery in room %s (message %d)", m.RoomID, m.ID)
		}
	}
	return m, nil
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestSendPersistsThenDelivers(t *testing.T) {
	store := NewStore(newTestDB(t))
	registry := NewRegistry()
	b := NewBroadcaster(store, registry)
	ctx := context.Background()

	room, _ := RoomID("alice", "bob")
	aliceConn := &fakeConn{}
	bobConn := &fakeConn{}
	registry.Join(aliceConn, room)
	registry.Join(bobConn, room)

	m, err := b.Send(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected persisted message with id")
	}

	for _, c := range []*fakeConn{aliceConn, bobConn} {
		got := c.received()
		if len(got) != 1 {
			t.Fatalf("expected exactly one delivery, got %d", len(got))
		}
		if got[0].Sender != "alice" || got[0].Receiver != "bob" || got[0].Body != "hello" {
			t.Fatalf("unexpected delivered message %+v", got[0])
		}
		if got[0].ID != m.ID {
			t.Fatalf("delivered message must be the stored record")
		}
	}
}

func TestSendRejectionsPersistNothing(t *testing.T) {
	store := NewStore(newTestDB(t))
	registry := NewRegistry()
	b := NewBroadcaster(store, registry)
	ctx := context.Background()

	room, _ := RoomID("alice", "bob")
	c := &fakeConn{}
	registry.Join(c, room)

	if _, err := b.Send(ctx, "alice", "bob", ""); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := b.Send(ctx, "alice", "alice", "hi"); !errors.Is(err, ErrSameParticipant) {
		t.Fatalf("expected ErrSameParticipant, got %v", err)
	}

	if len(c.received()) != 0 {
		t.Fatalf("rejected sends must not broadcast")
	}
	hist, err := store.History(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("rejected sends must not persist")
	}
}

func TestSendWithNoListenersStillPersists(t *testing.T) {
	store := NewStore(newTestDB(t))
	b := NewBroadcaster(store, NewRegistry())
	ctx := context.Background()

	// receiver offline, nobody bound to the room
	if _, err := b.Send(ctx, "alice", "bob", "are you there?"); err != nil {
		t.Fatalf("send to empty room must succeed: %v", err)
	}

	hist, err := store.History(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Body != "are you there?" {
		t.Fatalf("message must be retrievable from history, got %v", hist)
	}
}

func TestSendRefusedDeliveryDoesNotFailSend(t *testing.T) {
	store := NewStore(newTestDB(t))
	registry := NewRegistry()
	b := NewBroadcaster(store, registry)
	ctx := context.Background()

	room, _ := RoomID("alice", "bob")
	dead := &fakeConn{refuse: true}
	live := &fakeConn{}
	registry.Join(dead, room)
	registry.Join(live, room)

	if _, err := b.Send(ctx, "alice", "bob", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(live.received()) != 1 {
		t.Fatalf("live conn should still get the message")
	}
	if len(dead.received()) != 0 {
		t.Fatalf("refusing conn should receive nothing")
	}
}

func TestSendOrderMatchesHistory(t *testing.T) {
	store := NewStore(newTestDB(t))
	registry := NewRegistry()
	b := NewBroadcaster(store, registry)
	ctx := context.Background()

	room, _ := RoomID("alice", "bob")
	bobConn := &fakeConn{}
	registry.Join(bobConn, room)

	for i := 1; i <= 3; i++ {
		if _, err := b.Send(ctx, "alice", "bob", fmt.Sprintf("%d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	got := bobConn.received()
	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(got))
	}
	hist, err := store.History(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for i := range hist {
		if hist[i].Body != fmt.Sprintf("%d", i+1) {
			t.Fatalf("history order wrong at %d: %q", i, hist[i].Body)
		}
		if got[i].ID != hist[i].ID {
			t.Fatalf("delivery order must match persisted order")
		}
	}
}

package chat

import (
	"fmt"
	"sync"
	"testing"

	"peermarket/models"
)

type fakeConn struct {
	mu     sync.Mutex
	got    []*models.ChatMessage
	refuse bool
}

func (f *fakeConn) Deliver(m *models.ChatMessage) bool {
	if f.refuse {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, m)
	return true
}

func (f *fakeConn) received() []*models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ChatMessage, len(f.got))
	copy(out, f.got)
	return out
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}

	r.Join(c, "alice:bob")
	r.Join(c, "alice:bob")

	members := r.Members("alice:bob")
	if len(members) != 1 {
		t.Fatalf("expected exactly one membership after double join, got %d", len(members))
	}
}

func TestMembersOfUnknownRoom(t *testing.T) {
	r := NewRegistry()
	if members := r.Members("nobody:here"); len(members) != 0 {
		t.Fatalf("expected no members, got %d", len(members))
	}
}

func TestLeaveSingleRoom(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Join(c, "alice:bob")
	r.Join(c, "alice:carol")

	r.Leave(c, "alice:bob")

	if len(r.Members("alice:bob")) != 0 {
		t.Fatalf("expected conn gone from left room")
	}
	if len(r.Members("alice:carol")) != 1 {
		t.Fatalf("leave must not touch other bindings")
	}
}

func TestLeaveAllCleansEveryBinding(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	other := &fakeConn{}

	rooms := []string{"alice:bob", "alice:carol", "alice:dave", "alice:erin"}
	for _, room := range rooms {
		r.Join(c, room)
	}
	r.Join(other, "alice:bob")

	r.LeaveAll(c)

	for _, room := range rooms {
		for _, m := range r.Members(room) {
			if m == Conn(c) {
				t.Fatalf("conn still bound to %s after LeaveAll", room)
			}
		}
	}
	if len(r.Members("alice:bob")) != 1 {
		t.Fatalf("LeaveAll removed an unrelated connection")
	}

	// second LeaveAll and LeaveAll on a never-joined conn are no-ops
	r.LeaveAll(c)
	r.LeaveAll(&fakeConn{})
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()

	const workers = 16
	var wg sync.WaitGroup
	conns := make([]*fakeConn, workers)
	for i := range conns {
		conns[i] = &fakeConn{}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := conns[i]
			for j := 0; j < 50; j++ {
				room := fmt.Sprintf("user%d:user%d", j%7, 10+j%5)
				r.Join(c, room)
				if j%3 == 0 {
					r.Leave(c, room)
				}
				_ = r.Members(room)
			}
			r.LeaveAll(c)
		}(i)
	}
	wg.Wait()

	for j := 0; j < 50; j++ {
		room := fmt.Sprintf("user%d:user%d", j%7, 10+j%5)
		if n := len(r.Members(room)); n != 0 {
			t.Fatalf("room %s still has %d members after all conns left", room, n)
		}
	}
}

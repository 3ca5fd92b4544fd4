package chat

import (
	"hash/fnv"
	"sync"

	"peermarket/models"
)

// Conn is the live connection handle the registry tracks. The websocket layer
// implements it; Deliver must not block and reports whether the message was
// accepted for writing (a refusal just means that connection misses the live
// push, the message is still in the store).
type Conn interface {
	Deliver(m *models.ChatMessage) bool
}

const registryShards = 16

type registryShard struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{}
	conns map[Conn]map[string]struct{}
}

// Registry tracks which live connections are bound to which room ids. It is
// sharded by room id so unrelated conversations do not contend on one lock.
// Bindings are process-local and never persisted; a reconnecting client must
// re-join its rooms.
type Registry struct {
	shards [registryShards]*registryShard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &registryShard{
			rooms: make(map[string]map[Conn]struct{}),
			conns: make(map[Conn]map[string]struct{}),
		}
	}
	return r
}

func (r *Registry) shardFor(roomID string) *registryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(roomID))
	return r.shards[h.Sum32()%registryShards]
}

// Join binds c to roomID. Joining a room already joined is a no-op.
func (r *Registry) Join(c Conn, roomID string) {
	if c == nil || roomID == "" {
		return
	}
	s := r.shardFor(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[Conn]struct{})
	}
	s.rooms[roomID][c] = struct{}{}
	if s.conns[c] == nil {
		s.conns[c] = make(map[string]struct{})
	}
	s.conns[c][roomID] = struct{}{}
}

// Leave unbinds c from a single room.
func (r *Registry) Leave(c Conn, roomID string) {
	if c == nil || roomID == "" {
		return
	}
	s := r.shardFor(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(c, roomID)
}

// LeaveAll removes every binding for c. Called on disconnect; safe to call
// for a connection that never joined anything, and safe to call twice.
func (r *Registry) LeaveAll(c Conn) {
	if c == nil {
		return
	}
	for _, s := range r.shards {
		s.mu.Lock()
		for roomID := range s.conns[c] {
			s.removeLocked(c, roomID)
		}
		s.mu.Unlock()
	}
}

// Members returns a snapshot of the connections currently bound to roomID.
// An empty result is a legitimate state (nobody listening), not an error.
func (r *Registry) Members(roomID string) []Conn {
	s := r.shardFor(roomID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.rooms[roomID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// removeLocked drops the roomID<->c binding; caller holds s.mu.
func (s *registryShard) removeLocked(c Conn, roomID string) {
	if set := s.rooms[roomID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(s.rooms, roomID)
		}
	}
	if set := s.conns[c]; set != nil {
		delete(set, roomID)
		if len(set) == 0 {
			delete(s.conns, c)
		}
	}
}

// Package server tracks live sessions by connection id and fans frames out to
// them through the Registry type.
package server

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps connection ids to live sessions. Only the dispatcher adds and
// removes entries; the tick scheduler reads, broadcasts and force-closes.
// The whole table is guarded by one reader-writer lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint8]*Session
	capacity int
}

// NewRegistry creates an empty registry admitting at most capacity sessions.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		sessions: make(map[uint8]*Session),
		capacity: capacity,
	}
}

// NextID returns the lowest free connection id in 1..254. It fails with
// ErrServerFull once capacity sessions are registered.
func (r *Registry) NextID() (uint8, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sessions) >= r.capacity {
		return 0, fmt.Errorf("%w (%d)", ErrServerFull, r.capacity)
	}
	for id := 1; id <= maxConnectionID; id++ {
		if _, taken := r.sessions[uint8(id)]; !taken {
			return uint8(id), nil
		}
	}
	return 0, ErrNoFreeID
}

// Add registers a session under its id.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

// Remove unregisters s. It reports false if s is no longer the session
// registered under its id.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.id]; !ok || current != s {
		return false
	}
	delete(r.sessions, s.id)
	return true
}

// Get returns the session registered under id.
func (r *Registry) Get(id uint8) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Capacity returns the maximum number of sessions.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Broadcast queues frame for every session except the one with id except
// (0 excludes nobody) and returns how many accepted it. Delivery is best
// effort: a session that cannot take the frame is skipped.
func (r *Registry) Broadcast(frame []byte, except uint8) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, s := range r.sessions {
		if id == except {
			continue
		}
		if s.enqueue(frame) {
			delivered++
		}
	}
	return delivered
}

// Close force-closes the transport of the session registered under id
// without unregistering it. The session's reader then reports the disconnect
// to the dispatcher, which performs the removal.
func (r *Registry) Close(id uint8) bool {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return false
	}
	s.Close()
	return true
}

// Sessions returns a snapshot of all sessions ordered by id.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].id < sessions[j].id })
	return sessions
}

// CloseAll closes every registered session.
func (r *Registry) CloseAll() int {
	sessions := r.Sessions()
	for _, s := range sessions {
		s.Close()
	}
	return len(sessions)
}

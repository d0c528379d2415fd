package auth

import "sync"

// SessionStore holds the current authenticated session of one client.
type SessionStore interface {
	Get() (Session, bool)
	Set(Session)
	Clear()
}

// MemorySessionStore keeps the current session in memory. Sessions are copied
// on the way in and out, so a reader never observes a partially replaced or
// later mutated session.
type MemorySessionStore struct {
	mu      sync.RWMutex
	current *Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return s.current.Clone(), true
}

// Set replaces the current session wholesale.
func (s *MemorySessionStore) Set(session Session) {
	cloned := session.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &cloned
}

func (s *MemorySessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

var _ SessionStore = (*MemorySessionStore)(nil)

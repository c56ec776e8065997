package engine

import (
	"sync"

	"voice-trading-bot/internal/types"
)

// session is the per-connection state the engine owns: exactly one
// pending-confirmation slot. The mutex serializes concurrent messages on
// the same session so the slot is always read-modify-written atomically.
type session struct {
	mu      sync.Mutex
	pending *types.PendingOrder
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*session{}}
}

// get returns the session for id, creating it on first touch. Only the
// store map is guarded here; callers lock the session itself.
func (s *sessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

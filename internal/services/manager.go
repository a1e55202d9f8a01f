package services

import (
	"context"
	"sync"
	"time"

	"tiempos/internal/cache"
)

// SessionManager keeps one Session per user. Sessions idle for longer than
// the cache TTL are dropped and rebuilt from the store on next use.
type SessionManager struct {
	deps     SessionDeps
	sessions *cache.LRUCache[*Session]
	mu       sync.Mutex // serialises session creation
}

func NewSessionManager(deps SessionDeps, maxSessions int, idle time.Duration) *SessionManager {
	return &SessionManager{
		deps:     deps,
		sessions: cache.NewLRUCache[*Session](maxSessions, idle),
	}
}

// Cache exposes the session cache for periodic cleanup.
func (m *SessionManager) Cache() *cache.LRUCache[*Session] {
	return m.sessions
}

// Session returns the user's session, creating it and loading its clinics on
// first use. The notice of the initial load is returned only then.
func (m *SessionManager) Session(ctx context.Context, user Identity) (*Session, Notice, error) {
	if s, ok := m.sessions.Get(user.ID); ok {
		return s, Notice{}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions.Get(user.ID); ok {
		return s, Notice{}, nil
	}

	s := NewSession(user, m.deps)
	n, err := s.LoadClinics(ctx)
	if err != nil {
		// Not cached; the next request retries the load.
		return s, n, err
	}
	m.sessions.Set(user.ID, s)
	return s, n, nil
}

// Forget drops the user's session.
func (m *SessionManager) Forget(userID string) {
	m.sessions.Delete(userID)
}

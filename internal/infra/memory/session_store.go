package memory

import (
	"sync"

	"livequiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Retired sessions stay in the map so result reads keep resolving; only the
// sweeper-driven END path stops them from mutating further.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*app.Session
	players  map[string]int64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*app.Session),
		players:  make(map[string]int64),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID int64) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) ByPlayer(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.players[playerID]
	if !ok {
		return nil, false
	}
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) IndexPlayer(playerID string, sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[playerID] = sessionID
}

func (s *SessionStore) Active() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []*app.Session
	for _, session := range s.sessions {
		if session.Active() {
			active = append(active, session)
		}
	}
	return active
}

// Retire is a no-op for the in-memory store; the session record stays
// resolvable for result queries.
func (s *SessionStore) Retire(int64) {}

package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"livequiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state itself stays in-process; the per-session mutex is what
//     linearizes ADVANCE/END, and moving that to Redis would reintroduce the
//     read-modify-write race this design removes.
//   - Redis marks session liveness so operators (and other instances) can see
//     which join codes are currently running.
//   - Retire clears the liveness marker while the local record stays
//     resolvable for result reads.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[int64]*app.Session
	players  map[string]int64
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[int64]*app.Session),
		players:  make(map[string]int64),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()),
		strconv.FormatInt(session.GameID(), 10), s.ttl).Err()
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

func (s *SessionStore) Retire(sessionID int64) {
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID int64) string {
	return "session:live:" + strconv.FormatInt(sessionID, 10)
}

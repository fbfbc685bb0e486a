package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"livequiz-service/internal/domain"
)

// cacheKey is the single singleflight key: the store holds one document set.
const cacheKey = "games"

// Store is the minimal surface CachedGameStore wraps (same as app.GameStore).
type Store interface {
	LoadGames(ctx context.Context) ([]domain.Game, error)
	ReplaceGames(ctx context.Context, games []domain.Game) error
}

// CachedGameStore caches the game documents with a TTL to keep the 1 s
// polling fan-out off the backing store. Concurrent cache misses collapse
// into one load via singleflight, and writes invalidate before passing
// through so readers never see the replaced set.
type CachedGameStore struct {
	backing Store
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Game
	expiresAt time.Time
}

func NewCachedGameStore(backing Store, ttl time.Duration) *CachedGameStore {
	return &CachedGameStore{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *CachedGameStore) LoadGames(ctx context.Context) ([]domain.Game, error) {
	now := s.clock()

	s.mu.RLock()
	if s.cached != nil && s.expiresAt.After(now) {
		games := copyGames(s.cached)
		s.mu.RUnlock()
		return games, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		now := s.clock()
		s.mu.RLock()
		if s.cached != nil && s.expiresAt.After(now) {
			games := copyGames(s.cached)
			s.mu.RUnlock()
			return games, nil
		}
		s.mu.RUnlock()

		games, err := s.backing.LoadGames(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cached = copyGames(games)
		s.expiresAt = now.Add(s.ttlWithJitter())
		s.mu.Unlock()
		return games, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Game), nil
}

func (s *CachedGameStore) ReplaceGames(ctx context.Context, games []domain.Game) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	return s.backing.ReplaceGames(ctx, games)
}

func (s *CachedGameStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

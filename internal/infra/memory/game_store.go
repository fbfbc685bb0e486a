package memory

import (
	"context"
	"sync"

	"livequiz-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameStore. It mirrors the
// whole-document contract of the real store: reads return a copy of every
// game, writes replace the full set.
type GameStore struct {
	mu    sync.RWMutex
	games []domain.Game
}

func NewGameStore(seed []domain.Game) *GameStore {
	store := &GameStore{}
	store.games = copyGames(seed)
	return store
}

func (s *GameStore) LoadGames(_ context.Context) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyGames(s.games), nil
}

func (s *GameStore) ReplaceGames(_ context.Context, games []domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = copyGames(games)
	return nil
}

func copyGames(games []domain.Game) []domain.Game {
	out := make([]domain.Game, len(games))
	copy(out, games)
	for i := range out {
		if out[i].Active != nil {
			active := *out[i].Active
			out[i].Active = &active
		}
		out[i].Questions = append([]domain.Question(nil), out[i].Questions...)
		out[i].OldSessions = append([]int64(nil), out[i].OldSessions...)
	}
	return out
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"livequiz-service/internal/domain"
)

// GameStore persists game documents as JSONB rows, one per game. The
// app-facing contract is still read-all / replace-all: ReplaceGames upserts
// every document and removes rows absent from the new set, in one
// transaction, which gives last-write-wins at document granularity.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) LoadGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		var game domain.Game
		if err := json.Unmarshal(raw, &game); err != nil {
			return nil, fmt.Errorf("unmarshal game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *GameStore) ReplaceGames(ctx context.Context, games []domain.Game) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace games: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	keep := make([]int64, 0, len(games))
	for _, game := range games {
		data, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("marshal game %d: %w", game.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO games (id, data) VALUES ($1, $2::jsonb)
			 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
			game.ID, data); err != nil {
			return fmt.Errorf("upsert game %d: %w", game.ID, err)
		}
		keep = append(keep, game.ID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM games WHERE NOT (id = ANY($1))`, keep); err != nil {
		return fmt.Errorf("prune games: %w", err)
	}
	return tx.Commit(ctx)
}

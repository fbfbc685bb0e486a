package memory_test

import (
	"context"
	"testing"

	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func seedGames() []domain.Game {
	return []domain.Game{
		{
			ID: 1, Name: "Math", Owner: "admin@example.com",
			Questions: []domain.Question{{
				ID: 1, Text: "1+1?", Type: domain.Single, Duration: 30, Points: 100,
				Options: []domain.Option{{Text: "2", Correct: true}, {Text: "3"}},
			}},
		},
		{ID: 2, Name: "History", Owner: "admin@example.com"},
	}
}

func TestGameStoreLoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGameStore(seedGames())

	games, err := store.LoadGames(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	// Mutating the returned slice must not leak into the store.
	games[0].Name = "tampered"
	games[0].Questions[0].Text = "tampered"
	sessionID := int64(123456)
	games[0].Active = &sessionID

	reloaded, err := store.LoadGames(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded[0].Name != "Math" || reloaded[0].Questions[0].Text != "1+1?" {
		t.Fatalf("store leaked caller mutations: %+v", reloaded[0])
	}
	if reloaded[0].Active != nil {
		t.Fatalf("store leaked active pointer mutation")
	}
}

func TestGameStoreReplaceSwapsWholeSet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGameStore(seedGames())

	replacement := []domain.Game{{ID: 7, Name: "Geography", Owner: "admin@example.com"}}
	if err := store.ReplaceGames(ctx, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	games, err := store.LoadGames(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(games) != 1 || games[0].ID != 7 {
		t.Fatalf("expected the replacement set only, got %+v", games)
	}
}

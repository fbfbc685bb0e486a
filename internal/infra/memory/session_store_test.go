package memory_test

import (
	"testing"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func newTestSession(id int64) *app.Session {
	questions := []domain.Question{{
		ID: 1, Text: "1+1?", Type: domain.Single, Duration: 30, Points: 100,
		Options: []domain.Option{{Text: "2", Correct: true}, {Text: "3"}},
	}}
	return app.NewSession(id, 1, "admin@example.com", questions)
}

func TestSessionStorePutGet(t *testing.T) {
	store := memory.NewSessionStore()

	if _, ok := store.Get(424242); ok {
		t.Fatalf("expected miss for unknown session")
	}

	session := newTestSession(424242)
	store.Put(session)

	got, ok := store.Get(424242)
	if !ok || got != session {
		t.Fatalf("expected the stored session back, got %v ok=%v", got, ok)
	}
}

func TestSessionStorePlayerIndex(t *testing.T) {
	store := memory.NewSessionStore()
	session := newTestSession(111111)
	store.Put(session)

	if _, ok := store.ByPlayer("nobody"); ok {
		t.Fatalf("expected miss for unindexed player")
	}

	store.IndexPlayer("player-1", 111111)
	got, ok := store.ByPlayer("player-1")
	if !ok || got != session {
		t.Fatalf("expected player index to resolve the session")
	}

	// Index pointing at a session that was never stored resolves to a miss.
	store.IndexPlayer("player-2", 999999)
	if _, ok := store.ByPlayer("player-2"); ok {
		t.Fatalf("expected miss when the indexed session is gone")
	}
}

func TestSessionStoreActiveAndRetire(t *testing.T) {
	store := memory.NewSessionStore()
	first := newTestSession(111111)
	second := newTestSession(222222)
	store.Put(first)
	store.Put(second)

	if got := len(store.Active()); got != 2 {
		t.Fatalf("expected 2 active sessions, got %d", got)
	}

	// Retire drops liveness tracking but the record stays readable so result
	// queries keep working after the game ends.
	store.Retire(111111)
	if _, ok := store.Get(111111); !ok {
		t.Fatalf("expected retired session to stay resolvable")
	}
}

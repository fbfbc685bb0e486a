package app

import (
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name         string
		points       int
		duration     int
		responseTime float64
		want         int
	}{
		{"instant answer gets full bonus", 100, 30, 0, 100},
		{"deadline answer gets base only", 100, 30, 30, 50},
		{"halfway answer", 100, 30, 15, 75},
		{"ten seconds in", 100, 30, 10, 83},
		{"late answer clamps at zero, never negative", 100, 30, 300, 0},
		{"zero points", 0, 30, 5, 0},
	}
	for _, tc := range cases {
		if got := Score(tc.points, tc.duration, tc.responseTime); got != tc.want {
			t.Fatalf("%s: Score(%d, %d, %v) = %d, want %d",
				tc.name, tc.points, tc.duration, tc.responseTime, got, tc.want)
		}
	}
}

func TestTotalScoreSkipsIncorrectAndMissing(t *testing.T) {
	questions := []domain.Question{
		{Duration: 30, Points: 100},
		{Duration: 30, Points: 100},
		{Duration: 30, Points: 100},
	}
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	answers := []domain.PlayerAnswer{
		{QuestionStartedAt: start, AnsweredAt: start.Add(10 * time.Second), Correct: true},
		{QuestionStartedAt: start, AnsweredAt: start.Add(5 * time.Second), Correct: false},
		{}, // never answered
	}
	if got := TotalScore(answers, questions); got != 83 {
		t.Fatalf("expected only the correct answer to score (83), got %d", got)
	}
}

func TestCorrectRateRounds(t *testing.T) {
	results := []domain.PlayerResult{
		{Answers: []domain.PlayerAnswer{{Correct: true}}},
		{Answers: []domain.PlayerAnswer{{Correct: true}}},
		{Answers: []domain.PlayerAnswer{{Correct: false}}},
	}
	if got := CorrectRate(results, 0); got != 67 {
		t.Fatalf("expected 2/3 to round to 67, got %d", got)
	}
	if got := CorrectRate(nil, 0); got != 0 {
		t.Fatalf("expected zero players to yield 0, got %d", got)
	}
}

func TestAverageAnswerTimeIgnoresUnanswered(t *testing.T) {
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	results := []domain.PlayerResult{
		{Answers: []domain.PlayerAnswer{{QuestionStartedAt: start, AnsweredAt: start.Add(10 * time.Second)}}},
		{Answers: []domain.PlayerAnswer{{QuestionStartedAt: start, AnsweredAt: start.Add(15 * time.Second)}}},
		{Answers: []domain.PlayerAnswer{{}}},
	}
	if got := AverageAnswerTime(results, 0); got != 12.5 {
		t.Fatalf("expected mean over answered players 12.5, got %v", got)
	}
	if got := AnsweredCount(results, 0); got != 2 {
		t.Fatalf("expected 2 answered, got %d", got)
	}
}

func TestRankPlayersStableOnTies(t *testing.T) {
	results := []domain.PlayerResult{
		{Name: "first-joiner", Score: 50},
		{Name: "top", Score: 80},
		{Name: "second-joiner", Score: 50},
	}
	ranked := RankPlayers(results)
	if ranked[0].Name != "top" {
		t.Fatalf("expected highest score first, got %+v", ranked)
	}
	if ranked[1].Name != "first-joiner" || ranked[2].Name != "second-joiner" {
		t.Fatalf("expected ties to keep join order, got %+v", ranked)
	}
}

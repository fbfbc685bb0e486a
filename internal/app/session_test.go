package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func twoQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: 1, Text: "What is 2 + 2?", Type: domain.Single, Duration: 30, Points: 100,
			Options: []domain.Option{{Text: "3"}, {Text: "4", Correct: true}, {Text: "5"}},
		},
		{
			ID: 2, Text: "Pick the primes", Type: domain.Multiple, Duration: 30, Points: 100,
			Options: []domain.Option{{Text: "2", Correct: true}, {Text: "3", Correct: true}, {Text: "4"}},
		},
	}
}

func TestSessionLifecycle(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)

	if started, err := session.started(); err != nil || started {
		t.Fatalf("expected waiting session, got started=%v err=%v", started, err)
	}

	if pos, err := session.advance(); err != nil || pos != 0 {
		t.Fatalf("expected first advance to position 0, got pos=%d err=%v", pos, err)
	}
	if started, _ := session.started(); !started {
		t.Fatalf("expected session started after advance")
	}

	if err := session.end(); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if _, err := session.advance(); !errors.Is(err, domain.ErrSessionOver) {
		t.Fatalf("expected advance after end to fail with session over, got %v", err)
	}
	if err := session.end(); !errors.Is(err, domain.ErrSessionOver) {
		t.Fatalf("expected second end to fail with session over, got %v", err)
	}
	if _, err := session.started(); !errors.Is(err, domain.ErrSessionOver) {
		t.Fatalf("expected started after end to fail with session over, got %v", err)
	}
}

func TestAdvancePastLastQuestion(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)

	for i := 0; i < 2; i++ {
		if _, err := session.advance(); err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
	}
	pos, err := session.advance()
	if err != nil || pos != 2 {
		t.Fatalf("expected exhausted position 2, got pos=%d err=%v", pos, err)
	}

	// Further advances stay at N; the session still awaits an explicit END.
	pos, err = session.advance()
	if err != nil || pos != 2 {
		t.Fatalf("expected position to stay at 2, got pos=%d err=%v", pos, err)
	}
	if _, _, _, err := session.currentQuestion(); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected no live question at position N, got %v", err)
	}
	if !session.Active() {
		t.Fatalf("expected session to stay active until END")
	}
}

func TestJoinOnlyWhileWaiting(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)

	if err := session.join("p1", "Alice"); err != nil {
		t.Fatalf("join in waiting state failed: %v", err)
	}
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if err := session.join("p2", "Bob"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected join after start to fail validation, got %v", err)
	}
}

func TestSubmitOverwritesUntilDeadline(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)
	if err := session.join("p1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	clock.Advance(5 * time.Second)
	if err := session.submitAnswer("p1", []string{"3"}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	clock.Advance(5 * time.Second)
	if err := session.submitAnswer("p1", []string{"4"}); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	// The ledger holds exactly one entry: the later submission.
	slot := session.players["p1"].answers[0]
	if got := slot.Answers; len(got) != 1 || got[0] != "4" {
		t.Fatalf("expected last submission to win, got %v", got)
	}
	if slot.ResponseTime() != 10 {
		t.Fatalf("expected answeredAt 10s after start, got %v", slot.ResponseTime())
	}

	// The server enforces the deadline regardless of client UI state.
	clock.Advance(25 * time.Second)
	if err := session.submitAnswer("p1", []string{"5"}); !errors.Is(err, domain.ErrTooLate) {
		t.Fatalf("expected too-late rejection, got %v", err)
	}
	if got := session.players["p1"].answers[0].Answers; got[0] != "4" {
		t.Fatalf("late submission must not touch the ledger, got %v", got)
	}

	if err := session.submitAnswer("ghost", []string{"4"}); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected unknown player rejection, got %v", err)
	}
}

func TestMidQuestionAdvanceSkipsAndResetsTimer(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	clock.Advance(10 * time.Second)
	pos, err := session.advance()
	if err != nil || pos != 1 {
		t.Fatalf("expected mid-question advance to skip ahead, got pos=%d err=%v", pos, err)
	}
	_, _, startedAt, err := session.currentQuestion()
	if err != nil {
		t.Fatalf("current question failed: %v", err)
	}
	if !startedAt.Equal(clock.Now()) {
		t.Fatalf("expected timer reset on advance, got startedAt=%v now=%v", startedAt, clock.Now())
	}
}

func TestRevealedAnswersRespectsDeadline(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	if _, err := session.revealedAnswers(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected reveal before deadline to fail, got %v", err)
	}

	// Locked state is derived from the clock, so the reveal works at the
	// exact deadline instant without any poll having to discover it.
	clock.Advance(30 * time.Second)
	answers, err := session.revealedAnswers()
	if err != nil {
		t.Fatalf("reveal at deadline failed: %v", err)
	}
	if len(answers) != 1 || answers[0] != "4" {
		t.Fatalf("expected revealed answer [4], got %v", answers)
	}

	status := session.status()
	if !status.AnswerAvailable {
		t.Fatalf("expected status to report answers available")
	}
}

func TestResultsScoreAndSetEquality(t *testing.T) {
	clock := newFakeClock()
	session := NewSessionWithClock(123456, 1, "admin", twoQuestions(), clock.Now)
	if err := session.join("p1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	// Question 1: correct at t=10s -> floor(50 + 50*(30-10)/30) = 83.
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if err := session.submitAnswer("p1", []string{"4"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	clock.Advance(20 * time.Second)

	// Question 2: multiple answer submitted out of order still counts.
	// Correct at t=5s -> floor(50 + 50*(30-5)/30) = 91.
	if _, err := session.advance(); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	clock.Advance(5 * time.Second)
	if err := session.submitAnswer("p1", []string{"3", "2"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	clock.Advance(25 * time.Second)

	if _, err := session.results(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected results before END to fail, got %v", err)
	}
	if err := session.end(); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	results, err := session.results()
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one player result, got %d", len(results))
	}
	r := results[0]
	if !r.Answers[0].Correct {
		t.Fatalf("expected question 1 marked correct, got %+v", r.Answers[0])
	}
	if !r.Answers[1].Correct {
		t.Fatalf("expected out-of-order multiple answer marked correct, got %+v", r.Answers[1])
	}
	if r.Score != 83+91 {
		t.Fatalf("expected score 174, got %d", r.Score)
	}
}

func TestAnswerSetEquality(t *testing.T) {
	if !answerSetEqual([]string{"3", "2"}, []string{"2", "3"}) {
		t.Fatalf("expected order-independent set equality")
	}
	if !answerSetEqual([]string{"True"}, []string{"true"}) {
		t.Fatalf("expected case-insensitive comparison")
	}
	if answerSetEqual([]string{"2"}, []string{"2", "3"}) {
		t.Fatalf("expected subset to not count as equal")
	}
	if answerSetEqual([]string{"2", "4"}, []string{"2", "3"}) {
		t.Fatalf("expected mismatched sets to not be equal")
	}
}

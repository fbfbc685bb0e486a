// Package poll reconstructs edge-triggered session events from repeated
// snapshot reads. Clients are stateless between polls: remaining time is
// always recomputed from the snapshot's start timestamp and the wall clock,
// never counted down locally, so a client that missed ticks or was suspended
// recovers the correct value on its next poll.
package poll

import (
	"context"
	"errors"
	"time"

	"livequiz-service/internal/domain"
)

// Snapshot is one point-in-time read of the session as a client sees it.
type Snapshot struct {
	Started   bool
	Position  int // -1 while waiting or between questions
	Duration  int // seconds, for the live question
	StartedAt time.Time
	Question  domain.Question
}

// Fetcher reads session state over whatever transport the client uses.
type Fetcher interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	RevealedAnswers(ctx context.Context) ([]string, error)
}

// EventKind discriminates synchronizer events.
type EventKind string

const (
	// QuestionChanged fires when the live question's position differs from
	// the last seen one; clients clear selection and reveal state.
	QuestionChanged EventKind = "question"
	// Tick carries the freshly recomputed remaining seconds.
	Tick EventKind = "tick"
	// AnswersRevealed fires once the correct answers become readable.
	AnswersRevealed EventKind = "answers"
	// SessionOver is terminal; the synchronizer stops polling after it.
	SessionOver EventKind = "over"
)

// Event is one edge-triggered state change derived from polling.
type Event struct {
	Kind      EventKind
	Position  int
	Question  domain.Question
	Remaining int
	Answers   []string
}

// Synchronizer drives the polling loop. The same logic serves the admin's
// live-monitoring view and the player's gameplay view.
type Synchronizer struct {
	fetcher        Fetcher
	now            func() time.Time
	pollInterval   time.Duration
	answerInterval time.Duration
	events         chan Event
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithIntervals overrides the 1s snapshot and 2s answer-poll cadences.
func WithIntervals(poll, answer time.Duration) Option {
	return func(s *Synchronizer) {
		s.pollInterval = poll
		s.answerInterval = answer
	}
}

func NewSynchronizer(fetcher Fetcher, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		fetcher:        fetcher,
		now:            time.Now,
		pollInterval:   time.Second,
		answerInterval: 2 * time.Second,
		events:         make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the channel Run emits on. It is closed when Run returns.
func (s *Synchronizer) Events() <-chan Event {
	return s.events
}

// Run polls until ctx is canceled or the session is gone. A terminal fetch
// error produces one SessionOver event and stops the loop without retrying;
// any other fetch error is treated as transient and the next tick retries.
func (s *Synchronizer) Run(ctx context.Context) {
	defer close(s.events)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	lastPosition := -2 // sentinel so position -1 still triggers the first diff
	revealed := false
	var lastAnswerPoll time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, err := s.fetcher.Snapshot(ctx)
		if err != nil {
			if terminal(err) {
				s.emit(ctx, Event{Kind: SessionOver})
				return
			}
			continue
		}
		if !snap.Started || snap.Position < 0 {
			continue
		}

		if snap.Position != lastPosition {
			lastPosition = snap.Position
			revealed = false
			lastAnswerPoll = time.Time{}
			s.emit(ctx, Event{Kind: QuestionChanged, Position: snap.Position, Question: snap.Question})
		}

		remaining := Remaining(snap.Duration, snap.StartedAt, s.now())
		s.emit(ctx, Event{Kind: Tick, Position: snap.Position, Remaining: remaining})

		if remaining > 0 || revealed {
			continue
		}
		// The question is locked; switch to the slower answer cadence until
		// the reveal succeeds.
		now := s.now()
		if !lastAnswerPoll.IsZero() && now.Sub(lastAnswerPoll) < s.answerInterval {
			continue
		}
		lastAnswerPoll = now
		answers, err := s.fetcher.RevealedAnswers(ctx)
		if err != nil {
			if terminal(err) {
				s.emit(ctx, Event{Kind: SessionOver})
				return
			}
			continue
		}
		revealed = true
		s.emit(ctx, Event{Kind: AnswersRevealed, Position: snap.Position, Answers: answers})
	}
}

func (s *Synchronizer) emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// terminal reports whether a fetch error means the session is definitively
// gone, as opposed to a transient failure worth retrying next tick.
func terminal(err error) bool {
	return errors.Is(err, domain.ErrSessionOver) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrPlayerNotFound)
}

// Remaining recomputes the seconds left on a question from wall clock. Never
// negative, and exactly the duration at the start instant.
func Remaining(duration int, startedAt, now time.Time) int {
	elapsed := int(now.Sub(startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := duration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

package app

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// Session is the authoritative in-memory state of one running quiz: the
// snapshotted question list, the current position, the active question's start
// time, and the per-player answer ledger. All access goes through its mutex so
// concurrent ADVANCE/END calls and player submissions serialize.
//
// Position semantics: -1 before the first ADVANCE, 0..N-1 while a question is
// live, N once every question has been played and the admin has yet to END.
type Session struct {
	id     int64
	gameID int64
	owner  string
	now    func() time.Time

	mu                sync.Mutex
	questions         []domain.Question
	position          int
	questionStartedAt time.Time
	lastMutation      time.Time
	active            bool
	players           map[string]*playerState
	joinOrder         []string
}

type playerState struct {
	id      string
	name    string
	answers []domain.PlayerAnswer
}

// NewSession snapshots the game's questions into a fresh session in the
// waiting state. Later edits to the game do not touch a running session.
func NewSession(id, gameID int64, owner string, questions []domain.Question) *Session {
	return NewSessionWithClock(id, gameID, owner, questions, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, gameID int64, owner string, questions []domain.Question, now func() time.Time) *Session {
	snapshot := make([]domain.Question, len(questions))
	copy(snapshot, questions)
	return &Session{
		id:           id,
		gameID:       gameID,
		owner:        owner,
		now:          now,
		questions:    snapshot,
		position:     -1,
		lastMutation: now(),
		active:       true,
		players:      make(map[string]*playerState),
	}
}

func (s *Session) ID() int64     { return s.id }
func (s *Session) GameID() int64 { return s.gameID }
func (s *Session) Owner() string { return s.owner }

// Active reports whether the session still accepts mutations.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IdleSince returns the time of the last admin mutation. The sweeper uses it
// to end abandoned sessions.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMutation
}

// advance moves to the next question and restarts the timer. Calling it while
// a question is still live skips ahead; calling it once every question has
// been played is a no-op that leaves the session awaiting END.
func (s *Session) advance() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, domain.ErrSessionOver
	}
	if s.position < len(s.questions) {
		s.position++
	}
	s.questionStartedAt = s.now()
	s.lastMutation = s.questionStartedAt
	return s.position, nil
}

// end freezes the session. Any further mutation or gameplay read fails with
// ErrSessionOver; result reads stay available.
func (s *Session) end() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.ErrSessionOver
	}
	s.active = false
	s.lastMutation = s.now()
	return nil
}

// join registers a player and reserves one answer slot per question. Players
// can only join while the session is waiting to start.
func (s *Session) join(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.ErrSessionOver
	}
	if s.position != -1 {
		return fmt.Errorf("%w: session has already started", domain.ErrValidation)
	}
	s.players[playerID] = &playerState{
		id:      playerID,
		name:    name,
		answers: make([]domain.PlayerAnswer, len(s.questions)),
	}
	s.joinOrder = append(s.joinOrder, playerID)
	return nil
}

// submitAnswer overwrites the player's ledger slot for the active question.
// The server is the deadline authority: submissions at or past the deadline
// fail with ErrTooLate regardless of what the client UI allowed.
func (s *Session) submitAnswer(playerID string, answers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.ErrSessionOver
	}
	player, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if s.position < 0 || s.position >= len(s.questions) {
		return domain.ErrQuestionNotFound
	}
	q := s.questions[s.position]
	now := s.now()
	if !now.Before(s.questionStartedAt.Add(time.Duration(q.Duration) * time.Second)) {
		return domain.ErrTooLate
	}
	player.answers[s.position] = domain.PlayerAnswer{
		QuestionStartedAt: s.questionStartedAt,
		AnsweredAt:        now,
		Answers:           append([]string(nil), answers...),
	}
	return nil
}

// currentQuestion returns the live question with correctness stripped, its
// position, and its start time for client-side countdown recomputation.
func (s *Session) currentQuestion() (domain.Question, int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return domain.Question{}, 0, time.Time{}, domain.ErrSessionOver
	}
	if s.position < 0 || s.position >= len(s.questions) {
		return domain.Question{}, 0, time.Time{}, domain.ErrQuestionNotFound
	}
	return s.questions[s.position].Sanitized(), s.position, s.questionStartedAt, nil
}

// revealedAnswers returns the correct option texts for the current question.
// It fails until the question's deadline has passed; locked state is derived
// from the clock on every call, never discovered by a later poll.
func (s *Session) revealedAnswers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, domain.ErrSessionOver
	}
	if s.position < 0 || s.position >= len(s.questions) {
		return nil, domain.ErrQuestionNotFound
	}
	q := s.questions[s.position]
	deadline := s.questionStartedAt.Add(time.Duration(q.Duration) * time.Second)
	if s.now().Before(deadline) {
		return nil, fmt.Errorf("%w: question is still open", domain.ErrValidation)
	}
	return q.CorrectAnswers(), nil
}

// started reports whether the first question has been advanced to. It fails
// once the session has ended so polling clients can tell the difference
// between "waiting" and "gone".
func (s *Session) started() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false, domain.ErrSessionOver
	}
	return s.position >= 0, nil
}

// SessionStatus is the admin's full snapshot of a session.
type SessionStatus struct {
	Active            bool              `json:"active"`
	Position          int               `json:"position"`
	QuestionStartedAt time.Time         `json:"isoTimeLastQuestionStarted"`
	AnswerAvailable   bool              `json:"answerAvailable"`
	Players           []string          `json:"players"`
	Questions         []domain.Question `json:"questions"`
}

// status snapshots the whole session for the admin's monitoring view.
func (s *Session) status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	answerAvailable := false
	if s.position >= 0 && s.position < len(s.questions) {
		q := s.questions[s.position]
		deadline := s.questionStartedAt.Add(time.Duration(q.Duration) * time.Second)
		answerAvailable = !s.now().Before(deadline)
	}

	names := make([]string, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		names = append(names, s.players[id].name)
	}
	questions := make([]domain.Question, len(s.questions))
	copy(questions, s.questions)

	return SessionStatus{
		Active:            s.active,
		Position:          s.position,
		QuestionStartedAt: s.questionStartedAt,
		AnswerAvailable:   answerAvailable,
		Players:           names,
		Questions:         questions,
	}
}

// results scores the ledger once the session has ended. Correctness is
// computed here, not at submission time: a slot is correct when its answer
// set equals the question's correct-option set, order-independent.
func (s *Session) results() ([]domain.PlayerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, fmt.Errorf("%w: session is still active", domain.ErrValidation)
	}
	return s.resultsLocked(), nil
}

// playerResult returns a single player's scored ledger after the session ends.
func (s *Session) playerResult(playerID string) (domain.PlayerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return domain.PlayerResult{}, fmt.Errorf("%w: session is still active", domain.ErrValidation)
	}
	player, ok := s.players[playerID]
	if !ok {
		return domain.PlayerResult{}, domain.ErrPlayerNotFound
	}
	return s.scoreLocked(player), nil
}

func (s *Session) resultsLocked() []domain.PlayerResult {
	results := make([]domain.PlayerResult, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		results = append(results, s.scoreLocked(s.players[id]))
	}
	return results
}

func (s *Session) scoreLocked(player *playerState) domain.PlayerResult {
	answers := make([]domain.PlayerAnswer, len(player.answers))
	copy(answers, player.answers)
	for i := range answers {
		if answers[i].Answered() {
			answers[i].Correct = answerSetEqual(answers[i].Answers, s.questions[i].CorrectAnswers())
		}
	}
	return domain.PlayerResult{
		Name:    player.name,
		Answers: answers,
		Score:   TotalScore(answers, s.questions),
	}
}

func answerSetEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	a := make([]string, len(got))
	for i, text := range got {
		a[i] = strings.ToLower(text)
	}
	b := make([]string, len(want))
	for i, text := range want {
		b[i] = strings.ToLower(text)
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

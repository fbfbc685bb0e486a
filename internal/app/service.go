package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// GameStore abstracts the persisted game documents. The contract is
// deliberately coarse (read all, replace all, last-write-wins) to match the
// whole-document store this service runs against.
type GameStore interface {
	LoadGames(ctx context.Context) ([]domain.Game, error)
	ReplaceGames(ctx context.Context, games []domain.Game) error
}

// SessionRepository tracks live and retired sessions plus the player index.
// Retired sessions stay resolvable so result reads keep working after END.
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID int64) (*Session, bool)
	ByPlayer(playerID string) (*Session, bool)
	IndexPlayer(playerID string, sessionID int64)
	Active() []*Session
	Retire(sessionID int64)
}

// Mutation is an admin lifecycle command against a game's session.
type Mutation string

const (
	MutationStart   Mutation = "START"
	MutationAdvance Mutation = "ADVANCE"
	MutationEnd     Mutation = "END"
)

// MutationResult reports the session's state after a mutation.
type MutationResult struct {
	SessionID int64 `json:"sessionId"`
	Position  int   `json:"position"`
	Active    bool  `json:"active"`
}

// ActiveQuestion is the player's view of the live question: sanitized content
// plus the timing fields needed to recompute the countdown from wall clock.
type ActiveQuestion struct {
	domain.Question
	Position  int       `json:"position"`
	StartedAt time.Time `json:"isoTimeLastQuestionStarted"`
}

// SessionResults is the admin's aggregate view of a finished session.
type SessionResults struct {
	Results []domain.PlayerResult  `json:"results"`
	Stats   []domain.QuestionStats `json:"stats"`
}

// Service contains the session lifecycle and gameplay use cases.
type Service struct {
	games    GameStore
	sessions SessionRepository
	now      func() time.Time

	// mu serializes admin mutations so concurrent STARTs for the same owner
	// cannot both pass the one-active-game check.
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(games GameStore, sessions SessionRepository) *Service {
	return NewServiceWithClock(games, sessions, time.Now)
}

// NewServiceWithClock allows deterministic timestamps in tests.
func NewServiceWithClock(games GameStore, sessions SessionRepository, now func() time.Time) *Service {
	return &Service{
		games:    games,
		sessions: sessions,
		now:      now,
		rnd:      rand.New(rand.NewSource(now().UnixNano())),
	}
}

// Mutate dispatches an admin lifecycle command for the given game.
func (s *Service) Mutate(ctx context.Context, owner string, gameID int64, kind Mutation) (MutationResult, error) {
	switch kind {
	case MutationStart:
		return s.Start(ctx, owner, gameID)
	case MutationAdvance:
		return s.Advance(ctx, owner, gameID)
	case MutationEnd:
		return s.End(ctx, owner, gameID)
	default:
		return MutationResult{}, fmt.Errorf("%w: unknown mutation %q", domain.ErrValidation, kind)
	}
}

// Start allocates a session for the game: the question list is snapshotted,
// position set to -1, and the game's active pointer persisted. It fails when
// the game has no questions, a question is malformed, or any game of the same
// owner already has a session running.
func (s *Service) Start(ctx context.Context, owner string, gameID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.games.LoadGames(ctx)
	if err != nil {
		return MutationResult{}, err
	}
	idx, err := findGame(games, owner, gameID)
	if err != nil {
		return MutationResult{}, err
	}
	game := &games[idx]

	if len(game.Questions) == 0 {
		return MutationResult{}, fmt.Errorf("%w: game has no questions", domain.ErrValidation)
	}
	for _, q := range game.Questions {
		if err := q.Validate(); err != nil {
			return MutationResult{}, err
		}
	}
	for _, other := range games {
		if other.Owner == owner && other.Active != nil {
			return MutationResult{}, fmt.Errorf("%w: game %d already has an active session", domain.ErrValidation, other.ID)
		}
	}

	sessionID := s.newSessionID()
	session := NewSessionWithClock(sessionID, gameID, owner, game.Questions, s.now)
	s.sessions.Put(session)

	game.Active = &sessionID
	if err := s.games.ReplaceGames(ctx, games); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{SessionID: sessionID, Position: -1, Active: true}, nil
}

// Advance moves the game's running session to its next question.
func (s *Service) Advance(ctx context.Context, owner string, gameID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, _, _, err := s.activeSession(ctx, owner, gameID)
	if err != nil {
		return MutationResult{}, err
	}
	position, err := session.advance()
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{SessionID: session.ID(), Position: position, Active: true}, nil
}

// End stops the game's running session and archives it: the game's active
// pointer is cleared and the session id appended to its past-session list.
func (s *Service) End(ctx context.Context, owner string, gameID int64) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endLocked(ctx, owner, gameID)
}

func (s *Service) endLocked(ctx context.Context, owner string, gameID int64) (MutationResult, error) {
	session, games, idx, err := s.activeSession(ctx, owner, gameID)
	if err != nil {
		return MutationResult{}, err
	}
	if err := session.end(); err != nil {
		return MutationResult{}, err
	}

	game := &games[idx]
	game.Active = nil
	game.OldSessions = append(game.OldSessions, session.ID())
	if err := s.games.ReplaceGames(ctx, games); err != nil {
		return MutationResult{}, err
	}
	s.sessions.Retire(session.ID())
	return MutationResult{SessionID: session.ID(), Position: -1, Active: false}, nil
}

// EndExpired force-ends every active session whose last mutation is older
// than ttl. Called by the sweeper; abandoned sessions otherwise stay active
// forever.
func (s *Service) EndExpired(ctx context.Context, ttl time.Duration) []int64 {
	cutoff := s.now().Add(-ttl)
	var ended []int64
	for _, session := range s.sessions.Active() {
		if session.IdleSince().After(cutoff) {
			continue
		}
		s.mu.Lock()
		_, err := s.endLocked(ctx, session.Owner(), session.GameID())
		s.mu.Unlock()
		if err == nil {
			ended = append(ended, session.ID())
		}
	}
	return ended
}

// Status returns the admin's full snapshot of a session, running or ended.
func (s *Service) Status(owner string, sessionID int64) (SessionStatus, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionStatus{}, domain.ErrSessionNotFound
	}
	if session.Owner() != owner {
		return SessionStatus{}, domain.ErrUnauthorized
	}
	return session.status(), nil
}

// Results returns the ranked scoreboard and per-question aggregates. It fails
// while the session is still active.
func (s *Service) Results(owner string, sessionID int64) (SessionResults, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionResults{}, domain.ErrSessionNotFound
	}
	if session.Owner() != owner {
		return SessionResults{}, domain.ErrUnauthorized
	}
	results, err := session.results()
	if err != nil {
		return SessionResults{}, err
	}

	stats := make([]domain.QuestionStats, len(session.questions))
	for i := range session.questions {
		stats[i] = domain.QuestionStats{
			CorrectRate:   CorrectRate(results, i),
			AverageAnswer: AverageAnswerTime(results, i),
			AnsweredCount: AnsweredCount(results, i),
		}
	}
	return SessionResults{Results: RankPlayers(results), Stats: stats}, nil
}

// Join registers an anonymous player in a waiting session and returns the
// generated player id used for all subsequent gameplay reads.
func (s *Service) Join(sessionID int64, name string) (string, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	playerID := uuid.NewString()
	if err := session.join(playerID, name); err != nil {
		return "", err
	}
	s.sessions.IndexPlayer(playerID, sessionID)
	return playerID, nil
}

// PlayerStatus reports whether the player's session has advanced past waiting.
func (s *Service) PlayerStatus(playerID string) (bool, error) {
	session, err := s.playerSession(playerID)
	if err != nil {
		return false, err
	}
	return session.started()
}

// PlayerQuestion returns the live question, correctness stripped.
func (s *Service) PlayerQuestion(playerID string) (ActiveQuestion, error) {
	session, err := s.playerSession(playerID)
	if err != nil {
		return ActiveQuestion{}, err
	}
	question, position, startedAt, err := session.currentQuestion()
	if err != nil {
		return ActiveQuestion{}, err
	}
	return ActiveQuestion{
		Question:  question,
		Position:  position,
		StartedAt: startedAt,
	}, nil
}

// SubmitAnswer records the player's answer for the live question,
// overwriting any earlier submission.
func (s *Service) SubmitAnswer(playerID string, answers []string) error {
	session, err := s.playerSession(playerID)
	if err != nil {
		return err
	}
	return session.submitAnswer(playerID, answers)
}

// RevealedAnswers returns the correct option texts once the deadline passed.
func (s *Service) RevealedAnswers(playerID string) ([]string, error) {
	session, err := s.playerSession(playerID)
	if err != nil {
		return nil, err
	}
	return session.revealedAnswers()
}

// PlayerResults returns the player's scored ledger after the session ends.
func (s *Service) PlayerResults(playerID string) (domain.PlayerResult, error) {
	session, err := s.playerSession(playerID)
	if err != nil {
		return domain.PlayerResult{}, err
	}
	return session.playerResult(playerID)
}

func (s *Service) playerSession(playerID string) (*Session, error) {
	session, ok := s.sessions.ByPlayer(playerID)
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return session, nil
}

// activeSession resolves the game's currently running session, with ownership
// checks. Returns the loaded games slice so callers can persist changes.
func (s *Service) activeSession(ctx context.Context, owner string, gameID int64) (*Session, []domain.Game, int, error) {
	games, err := s.games.LoadGames(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	idx, err := findGame(games, owner, gameID)
	if err != nil {
		return nil, nil, 0, err
	}
	game := games[idx]
	if game.Active == nil {
		if len(game.OldSessions) > 0 {
			return nil, nil, 0, domain.ErrSessionOver
		}
		return nil, nil, 0, fmt.Errorf("%w: game %d has no active session", domain.ErrValidation, gameID)
	}
	session, ok := s.sessions.Get(*game.Active)
	if !ok {
		return nil, nil, 0, domain.ErrSessionNotFound
	}
	return session, games, idx, nil
}

func findGame(games []domain.Game, owner string, gameID int64) (int, error) {
	for i := range games {
		if games[i].ID == gameID {
			if games[i].Owner != owner {
				return 0, domain.ErrUnauthorized
			}
			return i, nil
		}
	}
	return 0, domain.ErrGameNotFound
}

// newSessionID generates the short numeric id players type in to join.
func (s *Service) newSessionID() int64 {
	for {
		id := int64(100000 + s.rnd.Intn(900000))
		if _, taken := s.sessions.Get(id); !taken {
			return id
		}
	}
}

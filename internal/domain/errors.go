package domain

import "errors"

var (
	// ErrValidation is returned when a mutation's preconditions are not met
	// (no questions, another game already active, malformed question, ...).
	ErrValidation = errors.New("validation failed")
	// ErrGameNotFound indicates an unknown game id.
	ErrGameNotFound = errors.New("game not found")
	// ErrSessionNotFound indicates an unknown or already retired session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlayerNotFound indicates an unknown player id.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrQuestionNotFound indicates no question is active at the current position.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSessionOver is returned for any mutation or gameplay read against an
	// ended session.
	ErrSessionOver = errors.New("session is over")
	// ErrTooLate rejects answer submissions after the question's deadline.
	ErrTooLate = errors.New("answer submitted after deadline")
	// ErrUnauthorized is returned when the caller does not own the game.
	ErrUnauthorized = errors.New("unauthorized")
)

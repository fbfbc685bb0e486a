package domain

import (
	"fmt"
	"strings"
)

// QuestionType discriminates how a question's options are validated and how
// many may be selected.
type QuestionType string

const (
	// Single has exactly one correct option and accepts one selection.
	Single QuestionType = "single"
	// Multiple has at least one correct option and accepts several selections.
	Multiple QuestionType = "multiple"
	// Judgement is a true/false question: exactly two options named
	// "true" and "false" (case-insensitive), exactly one correct.
	Judgement QuestionType = "judgement"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case Single, Multiple, Judgement:
		return true
	}
	return false
}

// Validate checks the per-type structural invariants of a question.
func (q Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("%w: unknown question type %q", ErrValidation, q.Type)
	}
	if q.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrValidation, q.Duration)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: points must not be negative, got %d", ErrValidation, q.Points)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question has no options", ErrValidation)
	}

	correct := 0
	for _, opt := range q.Options {
		if opt.Correct {
			correct++
		}
	}

	switch q.Type {
	case Single:
		if correct != 1 {
			return fmt.Errorf("%w: single question needs exactly one correct option, got %d", ErrValidation, correct)
		}
	case Multiple:
		if correct < 1 {
			return fmt.Errorf("%w: multiple question needs at least one correct option", ErrValidation)
		}
	case Judgement:
		if err := q.validateJudgement(correct); err != nil {
			return err
		}
	}
	return nil
}

func (q Question) validateJudgement(correct int) error {
	if len(q.Options) != 2 {
		return fmt.Errorf("%w: judgement question needs exactly two options, got %d", ErrValidation, len(q.Options))
	}
	if correct != 1 {
		return fmt.Errorf("%w: judgement question needs exactly one correct option, got %d", ErrValidation, correct)
	}
	seen := map[string]bool{}
	for _, opt := range q.Options {
		seen[strings.ToLower(opt.Text)] = true
	}
	if !seen["true"] || !seen["false"] {
		return fmt.Errorf("%w: judgement options must be the literals \"true\" and \"false\"", ErrValidation)
	}
	return nil
}

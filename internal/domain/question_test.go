package domain

import (
	"errors"
	"testing"
)

func TestValidateSingle(t *testing.T) {
	q := Question{
		Type:     Single,
		Duration: 30,
		Points:   100,
		Options: []Option{
			{Text: "a", Correct: true},
			{Text: "b"},
		},
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("expected valid single question, got %v", err)
	}

	q.Options[1].Correct = true
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for two correct options, got %v", err)
	}
}

func TestValidateMultiple(t *testing.T) {
	q := Question{
		Type:     Multiple,
		Duration: 20,
		Options: []Option{
			{Text: "a", Correct: true},
			{Text: "b", Correct: true},
			{Text: "c"},
		},
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("expected valid multiple question, got %v", err)
	}

	for i := range q.Options {
		q.Options[i].Correct = false
	}
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error with no correct options, got %v", err)
	}
}

func TestValidateJudgement(t *testing.T) {
	q := Question{
		Type:     Judgement,
		Duration: 10,
		Options: []Option{
			{Text: "True", Correct: true},
			{Text: "FALSE"},
		},
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("expected case-insensitive true/false to validate, got %v", err)
	}

	q.Options[1].Text = "no"
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for non true/false texts, got %v", err)
	}

	q.Options[1].Text = "false"
	q.Options = append(q.Options, Option{Text: "maybe"})
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for three options, got %v", err)
	}
}

func TestValidateRejectsBadTiming(t *testing.T) {
	q := Question{
		Type:     Single,
		Duration: 0,
		Options:  []Option{{Text: "a", Correct: true}},
	}
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero duration, got %v", err)
	}

	q.Duration = 10
	q.Points = -5
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative points, got %v", err)
	}
}

func TestSanitizedStripsCorrectness(t *testing.T) {
	q := Question{
		Type:     Single,
		Duration: 30,
		Options: []Option{
			{Text: "a", Correct: true},
			{Text: "b"},
		},
	}
	clean := q.Sanitized()
	for _, opt := range clean.Options {
		if opt.Correct {
			t.Fatalf("sanitized question leaked correctness: %+v", clean.Options)
		}
	}
	if q.Options[0].Correct != true {
		t.Fatalf("sanitizing mutated the original question")
	}
}

package domain

import "time"

// Game is the persisted definition of a quiz: an owner's ordered question list
// plus bookkeeping for the one session that may currently be running against it.
type Game struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Owner       string     `json:"owner"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Questions   []Question `json:"questions"`
	Active      *int64     `json:"active"`
	OldSessions []int64    `json:"oldSessions,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// Option is one selectable answer. Correct stays server-side until the
// question's deadline passes.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"isCorrect"`
}

// Question models a timed question worth a fixed number of points.
type Question struct {
	ID       int          `json:"id"`
	Text     string       `json:"question"`
	Type     QuestionType `json:"type"`
	Duration int          `json:"duration"` // seconds
	Points   int          `json:"points"`
	Options  []Option     `json:"options"`
	Media    string       `json:"media,omitempty"`
}

// CorrectAnswers returns the texts of all options marked correct.
func (q Question) CorrectAnswers() []string {
	var texts []string
	for _, opt := range q.Options {
		if opt.Correct {
			texts = append(texts, opt.Text)
		}
	}
	return texts
}

// Sanitized returns a copy safe to hand to players: correctness flags are
// stripped, option texts and ordering preserved.
func (q Question) Sanitized() Question {
	out := q
	out.Options = make([]Option, len(q.Options))
	for i, opt := range q.Options {
		out.Options[i] = Option{Text: opt.Text}
	}
	return out
}

// PlayerAnswer is one ledger entry: the last submission a player made for a
// question before its deadline. Answers are option texts, set semantics.
type PlayerAnswer struct {
	QuestionStartedAt time.Time `json:"questionStartedAt"`
	AnsweredAt        time.Time `json:"answeredAt"`
	Answers           []string  `json:"answers"`
	Correct           bool      `json:"correct"`
}

// Answered reports whether the slot holds a real submission.
func (a PlayerAnswer) Answered() bool {
	return !a.AnsweredAt.IsZero()
}

// ResponseTime is the seconds between question start and the last submission.
func (a PlayerAnswer) ResponseTime() float64 {
	if !a.Answered() {
		return 0
	}
	return a.AnsweredAt.Sub(a.QuestionStartedAt).Seconds()
}

// PlayerResult is the per-player view of a finished session: one answer slot
// per question, in question order.
type PlayerResult struct {
	Name    string         `json:"name"`
	Answers []PlayerAnswer `json:"answers"`
	Score   int            `json:"score"`
}

// QuestionStats aggregates one question's outcomes across all players.
type QuestionStats struct {
	CorrectRate   int     `json:"correctRate"`   // percent, rounded
	AverageAnswer float64 `json:"avgAnswerTime"` // seconds, 2 decimals
	AnsweredCount int     `json:"answeredCount"`
}

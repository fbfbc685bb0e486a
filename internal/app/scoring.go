package app

import (
	"math"
	"sort"

	"livequiz-service/internal/domain"
)

// Score computes the points awarded for a correct answer: half the question's
// points as a base plus a speed bonus scaling linearly from the full base (at
// zero response time) down to nothing at the deadline. The result is floored.
// A response time beyond the duration would drive the bonus negative; that is
// clamped so a correct answer never scores below zero.
func Score(points, duration int, responseTime float64) int {
	if duration <= 0 {
		return 0
	}
	base := float64(points) / 2
	bonus := base * (float64(duration) - responseTime) / float64(duration)
	score := int(math.Floor(base + bonus))
	if score < 0 {
		return 0
	}
	return score
}

// TotalScore sums the per-question scores of one player's answer slots.
// Incorrect or missing answers contribute nothing.
func TotalScore(answers []domain.PlayerAnswer, questions []domain.Question) int {
	total := 0
	for i, ans := range answers {
		if i >= len(questions) || !ans.Correct || !ans.Answered() {
			continue
		}
		q := questions[i]
		total += Score(q.Points, q.Duration, ans.ResponseTime())
	}
	return total
}

// CorrectRate returns the percentage of players who answered question idx
// correctly, rounded to the nearest integer. Zero players yields zero.
func CorrectRate(results []domain.PlayerResult, idx int) int {
	if len(results) == 0 {
		return 0
	}
	correct := 0
	for _, r := range results {
		if idx < len(r.Answers) && r.Answers[idx].Correct {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(results))))
}

// AverageAnswerTime returns the mean response time in seconds over players who
// actually answered question idx, rounded to two decimals.
func AverageAnswerTime(results []domain.PlayerResult, idx int) float64 {
	total := 0.0
	answered := 0
	for _, r := range results {
		if idx < len(r.Answers) && r.Answers[idx].Answered() {
			total += r.Answers[idx].ResponseTime()
			answered++
		}
	}
	if answered == 0 {
		return 0
	}
	return math.Round(total/float64(answered)*100) / 100
}

// AnsweredCount returns how many players submitted an answer for question idx.
func AnsweredCount(results []domain.PlayerResult, idx int) int {
	count := 0
	for _, r := range results {
		if idx < len(r.Answers) && r.Answers[idx].Answered() {
			count++
		}
	}
	return count
}

// RankPlayers orders results by total score descending. The sort is stable, so
// players with equal totals keep their join order.
func RankPlayers(results []domain.PlayerResult) []domain.PlayerResult {
	ranked := make([]domain.PlayerResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

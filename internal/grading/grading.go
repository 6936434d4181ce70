// Package grading scores quiz submissions. It is a pure transformation
// over in-memory data and performs no I/O.
package grading

import (
	"math"

	"preparedness-service/internal/models"
)

// SubmittedAnswer is one answer as received from the client.
type SubmittedAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
}

// Grade checks each submitted answer against the quiz's question set and
// returns the graded answers in submission order plus the total score.
// Answers referencing a question id not present in the quiz are skipped:
// stale or unknown references must not fail the whole submission.
// Duplicate answers for the same question are each graded independently
// and all contribute to the total.
func Grade(questions []models.Question, answers []SubmittedAnswer) ([]models.GradedAnswer, int) {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	graded := make([]models.GradedAnswer, 0, len(answers))
	totalScore := 0

	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}

		isCorrect := question.CorrectOption == answer.SelectedOption
		pointsEarned := 0
		if isCorrect {
			pointsEarned = question.PointValue()
		}
		totalScore += pointsEarned

		graded = append(graded, models.GradedAnswer{
			QuestionID:     answer.QuestionID,
			SelectedOption: answer.SelectedOption,
			IsCorrect:      isCorrect,
			PointsEarned:   pointsEarned,
		})
	}

	return graded, totalScore
}

// CorrectCount returns how many graded answers were correct.
func CorrectCount(graded []models.GradedAnswer) int {
	count := 0
	for _, g := range graded {
		if g.IsCorrect {
			count++
		}
	}
	return count
}

// Percentage converts a score into a whole-number percentage, rounded to
// the nearest integer. A zero-point quiz yields 0.
func Percentage(score, totalPoints int) int {
	if totalPoints <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(totalPoints) * 100))
}

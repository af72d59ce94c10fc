package services

import (
	"math"
	"strings"

	"github.com/bhojsoft/testseries-service/internal/models"
)

// ScoreBreakdown is the outcome of grading one submission.
type ScoreBreakdown struct {
	Score          float64
	CorrectCount   int
	IncorrectCount int
	TotalQuestions int
}

// normalizeAnswer is the single comparison rule for grading: surrounding
// whitespace and letter case never matter.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// scoreAnswers grades answers against questions in order. Answers and
// questions must already be the same length.
func scoreAnswers(questions []models.Question, answers []string) ScoreBreakdown {
	breakdown := ScoreBreakdown{TotalQuestions: len(questions)}

	for i, q := range questions {
		if normalizeAnswer(answers[i]) == normalizeAnswer(q.CorrectAnswer) {
			breakdown.CorrectCount++
		} else {
			breakdown.IncorrectCount++
		}
	}

	if breakdown.TotalQuestions > 0 {
		raw := float64(breakdown.CorrectCount) / float64(breakdown.TotalQuestions) * 100
		breakdown.Score = math.Round(raw*100) / 100
	}
	return breakdown
}

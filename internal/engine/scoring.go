package engine

import (
	"math"
	"strings"

	"github.com/prepworks/prepworks-backend/internal/model"
)

// Score grades a full answer ledger against the question sequence.
//
// Only scorable questions (MCQ with exactly one correct option) count toward
// the denominator; theory and malformed questions are carried in TotalCount
// but never affect the percentage. A zero scorable count yields a zero score
// rather than a division by zero.
//
// withBreakdown additionally groups scorable questions by subject tag, one
// breakdown entry per distinct subject (diagnostic variant).
func Score(questions []model.Question, answers map[int]Answer, timeUsedSeconds int, withBreakdown bool) model.Result {
	result := model.Result{
		TotalCount:      len(questions),
		TimeUsedSeconds: timeUsedSeconds,
	}

	var perSubject map[string]model.SubjectBreakdown
	if withBreakdown {
		perSubject = make(map[string]model.SubjectBreakdown)
	}

	for _, q := range questions {
		if !q.Scorable {
			continue
		}
		result.ScorableCount++

		correct := false
		if a, ok := answers[q.ID]; ok {
			correct = IsCorrect(q, a)
		}
		if correct {
			result.CorrectCount++
		}

		if perSubject != nil {
			b := perSubject[q.Subject]
			b.Total++
			if correct {
				b.Correct++
			}
			perSubject[q.Subject] = b
		}
	}

	if result.ScorableCount > 0 {
		result.Score = int(math.Round(float64(result.CorrectCount) / float64(result.ScorableCount) * 100))
	}

	if perSubject != nil {
		for subject, b := range perSubject {
			if b.Total > 0 {
				b.Accuracy = float64(b.Correct) / float64(b.Total)
			}
			perSubject[subject] = b
		}
		result.PerSubject = perSubject
	}

	return result
}

// IsCorrect reports whether an answer matches the question's correct letter.
// Comparison is case-insensitive; only scorable questions can be correct.
func IsCorrect(q model.Question, a Answer) bool {
	if !q.Scorable {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Value), q.CorrectLetter)
}

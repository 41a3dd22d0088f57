package app

import (
	"math"

	"trivia-quiz/internal/domain"
)

// Results accumulates answer records and freezes the summary on Finalize.
type Results struct {
	answers []domain.AnswerRecord
	score   int
	summary *domain.Summary
}

func (r *Results) Record(answer domain.AnswerRecord) {
	if r.summary != nil {
		return
	}
	if answer.UserAnswer != nil {
		answer.UserAnswer = domain.Choice(*answer.UserAnswer)
	}
	r.answers = append(r.answers, answer)
	if answer.IsCorrect {
		r.score++
	}
}

func (r *Results) Score() int { return r.score }

func (r *Results) Len() int { return len(r.answers) }

// Answers returns a deep copy of the recorded answers in question order.
func (r *Results) Answers() []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, len(r.answers))
	for i, a := range r.answers {
		if a.UserAnswer != nil {
			a.UserAnswer = domain.Choice(*a.UserAnswer)
		}
		out[i] = a
	}
	return out
}

// Finalize computes the summary once; later calls return the same value.
func (r *Results) Finalize(total int) domain.Summary {
	if r.summary == nil {
		summary := Summarize(r.score, total)
		r.summary = &summary
	}
	return *r.summary
}

// Summarize computes score, total and rounded percentage.
func Summarize(score, total int) domain.Summary {
	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(score) / float64(total)))
	}
	return domain.Summary{Score: score, Total: total, Percent: percent}
}

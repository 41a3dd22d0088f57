package app_test

import (
	"testing"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		score, total int
		want         int
	}{
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{0, 5, 0},
		{5, 5, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		got := app.Summarize(tt.score, tt.total)
		if got.Percent != tt.want || got.Score != tt.score || got.Total != tt.total {
			t.Errorf("Summarize(%d, %d) = %+v, want percent %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestResultsFreezeOnFinalize(t *testing.T) {
	var r app.Results
	r.Record(domain.AnswerRecord{QuestionText: "Q1", IsCorrect: true})
	r.Record(domain.AnswerRecord{QuestionText: "Q2"})

	first := r.Finalize(2)
	r.Record(domain.AnswerRecord{QuestionText: "Q3", IsCorrect: true})
	second := r.Finalize(3)

	if first != second || first.Percent != 50 {
		t.Fatalf("expected frozen summary, got %+v then %+v", first, second)
	}
	if r.Len() != 2 {
		t.Fatalf("expected no records after finalize, got %d", r.Len())
	}

	answers := r.Answers()
	answers[0].QuestionText = "mutated"
	if r.Answers()[0].QuestionText != "Q1" {
		t.Fatalf("expected answers to be copied")
	}
}

func TestResultsAnswersDoNotShareSelections(t *testing.T) {
	var r app.Results
	selected := domain.Choice("Paris")
	r.Record(domain.AnswerRecord{QuestionText: "q1", UserAnswer: selected, CorrectAnswer: "Paris", IsCorrect: true})
	*selected = "Berlin"

	first := r.Answers()
	*first[0].UserAnswer = "Rome"

	again := r.Answers()
	if got := *again[0].UserAnswer; got != "Paris" {
		t.Fatalf("expected recorded selection to stay Paris, got %q", got)
	}
	if again[0].UserAnswer == first[0].UserAnswer {
		t.Fatalf("expected each call to return its own selection pointer")
	}
}

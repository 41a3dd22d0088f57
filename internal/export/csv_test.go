package export

import (
	"bytes"
	"testing"

	"trivia-quiz/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	answers := []domain.AnswerRecord{
		{QuestionText: `Who said "hi"?`, UserAnswer: domain.Choice("Bob"), CorrectAnswer: "Bob", IsCorrect: true},
		{QuestionText: "2, 3 or 4?", CorrectAnswer: "4"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, answers); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "#,Question,Your Answer,Correct Answer\n" +
		"1,\"Who said \"\"hi\"\"?\",Bob,Bob\n" +
		"2,\"2, 3 or 4?\",,4\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

// Package export renders completed quiz answers for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"trivia-quiz/internal/domain"
)

var csvHeader = []string{"#", "Question", "Your Answer", "Correct Answer"}

// WriteCSV writes one row per answer; unanswered questions have an empty answer cell.
func WriteCSV(w io.Writer, answers []domain.AnswerRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i, a := range answers {
		your := ""
		if a.UserAnswer != nil {
			your = *a.UserAnswer
		}
		if err := cw.Write([]string{strconv.Itoa(i + 1), a.QuestionText, your, a.CorrectAnswer}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

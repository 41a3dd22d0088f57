package bank

import (
	"html"
	"math/rand"

	"golang.org/x/text/unicode/norm"

	"trivia-quiz/internal/domain"
)

const (
	minOptions = 2
	maxOptions = 4
)

// Item is a question exactly as the bank returns it.
type Item struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// DecodeText turns the bank's HTML-entity encoded text into plain NFC text.
func DecodeText(raw string) string {
	return norm.NFC.String(html.UnescapeString(raw))
}

// NewRecord builds a QuestionRecord from decoded text, shuffling the options once.
// It reports false when the options would not hold the correct answer exactly once
// or fall outside the 2-4 range.
func NewRecord(question, correct string, incorrect []string, rnd *rand.Rand, source any) (domain.QuestionRecord, bool) {
	options := make([]string, 0, len(incorrect)+1)
	options = append(options, correct)
	options = append(options, incorrect...)
	if len(options) < minOptions || len(options) > maxOptions {
		return domain.QuestionRecord{}, false
	}
	matches := 0
	for _, opt := range options {
		if opt == correct {
			matches++
		}
	}
	if matches != 1 || question == "" {
		return domain.QuestionRecord{}, false
	}

	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return domain.QuestionRecord{
		QuestionText:  question,
		CorrectAnswer: correct,
		Options:       options,
		Source:        source,
	}, true
}

func recordFromItem(item Item, rnd *rand.Rand) (domain.QuestionRecord, bool) {
	incorrect := make([]string, 0, len(item.IncorrectAnswers))
	for _, answer := range item.IncorrectAnswers {
		incorrect = append(incorrect, DecodeText(answer))
	}
	return NewRecord(DecodeText(item.Question), DecodeText(item.CorrectAnswer), incorrect, rnd, item)
}

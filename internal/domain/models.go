package domain

import "time"

// Difficulty filters bank questions. The zero value means "any".
type Difficulty string

const (
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionTypeMultiple is the only question type requested from the bank.
const QuestionTypeMultiple = "multiple"

// QuizParameters describes the quiz a caller asks for.
type QuizParameters struct {
	Amount             int        `json:"amount" validate:"gt=0,lte=50"`
	Category           int        `json:"category,omitempty" validate:"gte=0"` // 0 means any category
	Difficulty         Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	PerQuestionSeconds int        `json:"perQuestionSeconds" validate:"gt=0"`
}

// QuestionRecord is a normalized multiple-choice question.
// Options holds CorrectAnswer exactly once; its order is fixed at creation.
type QuestionRecord struct {
	QuestionText  string   `json:"questionText"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Source        any      `json:"-"`
}

// AnswerRecord is created once per question when it is submitted or times out.
// UserAnswer is nil when no option was chosen.
type AnswerRecord struct {
	QuestionText  string  `json:"questionText"`
	UserAnswer    *string `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
}

// Summary is the final score of a completed quiz.
type Summary struct {
	Score   int `json:"score"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Report bundles everything a review or export needs after completion.
type Report struct {
	RunID      string         `json:"runId"`
	Fallback   bool           `json:"fallback"`
	Summary    Summary        `json:"summary"`
	Answers    []AnswerRecord `json:"answers"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Choice wraps a selected option for AnswerRecord.UserAnswer and submissions.
func Choice(option string) *string {
	return &option
}

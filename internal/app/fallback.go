package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz/internal/bank"
	"trivia-quiz/internal/domain"
)

type fallbackQuestion struct {
	question  string
	correct   string
	incorrect []string
}

var fallbackSet = []fallbackQuestion{
	{
		question:  "Where can JavaScript run?",
		correct:   "In the browser and Node.js",
		incorrect: []string{"Only in the browser", "Only in Node.js", "Nowhere"},
	},
	{
		question:  "What is 2 ** 3 in JavaScript?",
		correct:   "8",
		incorrect: []string{"6", "9", "2**3 is not defined"},
	},
	{
		question:  "Which keyword starts a goroutine in Go?",
		correct:   "go",
		incorrect: []string{"async", "spawn", "thread"},
	},
}

// Fallback supplies a built-in question set when the bank cannot be used.
type Fallback struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewFallback() *Fallback {
	return NewFallbackWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewFallbackWithRand(rnd *rand.Rand) *Fallback {
	return &Fallback{rnd: rnd}
}

// Questions returns the fixed set with freshly shuffled options.
func (f *Fallback) Questions() []domain.QuestionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]domain.QuestionRecord, 0, len(fallbackSet))
	for _, q := range fallbackSet {
		record, ok := bank.NewRecord(q.question, q.correct, q.incorrect, f.rnd, nil)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records
}

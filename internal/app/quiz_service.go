package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"trivia-quiz/internal/domain"
)

// DefaultPerQuestionSeconds is used when the caller's timer setting is unusable.
const DefaultPerQuestionSeconds = 30

// QuestionSource fetches questions for a quiz (the remote bank in production).
type QuestionSource interface {
	FetchQuestions(ctx context.Context, params domain.QuizParameters) ([]domain.QuestionRecord, error)
}

// FallbackProvider supplies questions when the source fails.
type FallbackProvider interface {
	Questions() []domain.QuestionRecord
}

// QuizService wires question acquisition into the quiz state machine.
type QuizService struct {
	source   QuestionSource
	fallback FallbackProvider
	machine  *Machine

	// beginMu serializes Begin so a run's notice and fallback flag belong to
	// the questions that actually started.
	beginMu sync.Mutex

	mu           sync.Mutex
	runID        string
	usedFallback bool
}

func NewQuizService(source QuestionSource, fallback FallbackProvider, machine *Machine) *QuizService {
	return &QuizService{source: source, fallback: fallback, machine: machine}
}

// Machine exposes the state machine for answer/advance events and snapshots.
func (s *QuizService) Machine() *Machine {
	return s.machine
}

// Begin starts a fresh quiz. When the source fails the fallback set is used and
// the failure is returned as a non-fatal notice; the quiz is running either way.
// Overlapping calls run one after another.
func (s *QuizService) Begin(ctx context.Context, params domain.QuizParameters) (notice error) {
	s.beginMu.Lock()
	defer s.beginMu.Unlock()

	s.machine.Reset()
	s.machine.BeginLoading()

	usedFallback := false
	questions, err := s.source.FetchQuestions(ctx, params)
	if err != nil {
		slog.Warn("question fetch failed, using fallback questions", "error", err)
		questions = s.fallback.Questions()
		usedFallback = true
		notice = err
	}

	seconds := params.PerQuestionSeconds
	if seconds <= 0 {
		seconds = DefaultPerQuestionSeconds
	}

	if !s.machine.Start(questions, seconds) {
		slog.Warn("quiz start rejected", "questions", len(questions), "fallback", usedFallback)
		return notice
	}

	s.mu.Lock()
	s.runID = uuid.NewString()
	s.usedFallback = usedFallback
	s.mu.Unlock()
	return notice
}

// Report returns the review/export bundle once the quiz has completed.
func (s *QuizService) Report() (domain.Report, bool) {
	summary, ok := s.machine.Summary()
	if !ok {
		return domain.Report{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Report{
		RunID:      s.runID,
		Fallback:   s.usedFallback,
		Summary:    summary,
		Answers:    s.machine.Answers(),
		FinishedAt: s.machine.CompletedAt(),
	}, true
}

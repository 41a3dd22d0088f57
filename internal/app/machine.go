package app

import (
	"log/slog"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

// QuestionView is what a player sees for the current question.
type QuestionView struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// Snapshot is a read-only view of the quiz for presentation layers.
type Snapshot struct {
	Phase         Phase                `json:"phase"`
	CurrentIndex  int                  `json:"currentIndex"`
	Total         int                  `json:"total"`
	TimeRemaining int                  `json:"timeRemaining"`
	Locked        bool                 `json:"locked"`
	Score         int                  `json:"score"`
	Question      *QuestionView        `json:"question,omitempty"`
	LastAnswer    *domain.AnswerRecord `json:"lastAnswer,omitempty"`
	Summary       *domain.Summary      `json:"summary,omitempty"`
}

// Machine drives a single quiz one question at a time.
// Operations that do not apply in the current phase are no-ops and report false.
type Machine struct {
	scheduler Scheduler
	tick      time.Duration
	now       func() time.Time

	mu          sync.Mutex
	phase       Phase
	questions   []domain.QuestionRecord
	index       int
	results     *Results
	locked      bool
	perQuestion int
	remaining   int
	cancelTimer func()
	generation  uint64
	completedAt time.Time
	subscribers map[chan Snapshot]struct{}
}

func NewMachine(scheduler Scheduler) *Machine {
	return NewMachineWithClock(scheduler, time.Now)
}

// NewMachineWithClock allows deterministic completion timestamps in tests.
func NewMachineWithClock(scheduler Scheduler, now func() time.Time) *Machine {
	return &Machine{
		scheduler:   scheduler,
		tick:        time.Second,
		now:         now,
		phase:       PhaseIdle,
		results:     &Results{},
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// BeginLoading marks that questions are being acquired.
func (m *Machine) BeginLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseIdle {
		return false
	}
	m.phase = PhaseLoading
	m.broadcastLocked()
	return true
}

// Start enters the first question with a fresh score and a full timer.
func (m *Machine) Start(questions []domain.QuestionRecord, perQuestionSeconds int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseIdle && m.phase != PhaseLoading {
		return false
	}
	if len(questions) == 0 || perQuestionSeconds <= 0 {
		return false
	}
	m.questions = append([]domain.QuestionRecord(nil), questions...)
	m.index = 0
	m.results = &Results{}
	m.locked = false
	m.perQuestion = perQuestionSeconds
	m.completedAt = time.Time{}
	m.phase = PhaseActive
	m.startTimerLocked()
	slog.Debug("quiz started", "questions", len(questions), "perQuestionSeconds", perQuestionSeconds)
	m.broadcastLocked()
	return true
}

// SubmitAnswer records the selected option (nil for none) and locks the question.
// A second submission for the same question is ignored.
func (m *Machine) SubmitAnswer(selected *string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.submitLocked(selected) {
		return false
	}
	m.broadcastLocked()
	return true
}

// OnTimerExpire submits "no answer" unless the question is already locked.
func (m *Machine) OnTimerExpire() bool {
	return m.SubmitAnswer(nil)
}

// Advance moves past a locked question, completing the quiz after the last one.
func (m *Machine) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseActive || !m.locked {
		return false
	}
	if m.index == len(m.questions)-1 {
		m.stopTimerLocked()
		m.phase = PhaseCompleted
		m.completedAt = m.now()
		summary := m.results.Finalize(len(m.questions))
		slog.Debug("quiz completed", "score", summary.Score, "total", summary.Total)
	} else {
		m.index++
		m.locked = false
		m.startTimerLocked()
	}
	m.broadcastLocked()
	return true
}

// Reset drops all session data and returns to idle.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.phase = PhaseIdle
	m.questions = nil
	m.index = 0
	m.results = &Results{}
	m.locked = false
	m.remaining = 0
	m.completedAt = time.Time{}
	m.broadcastLocked()
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Answers returns the answers recorded so far.
func (m *Machine) Answers() []domain.AnswerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results.Answers()
}

// Summary is available once the quiz is completed.
func (m *Machine) Summary() (domain.Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseCompleted {
		return domain.Summary{}, false
	}
	return m.results.Finalize(len(m.questions)), true
}

// CompletedAt is zero until the quiz completes.
func (m *Machine) CompletedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completedAt
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Machine) submitLocked(selected *string) bool {
	if m.phase != PhaseActive || m.locked {
		return false
	}
	m.stopTimerLocked()
	q := m.questions[m.index]
	record := domain.AnswerRecord{
		QuestionText:  q.QuestionText,
		CorrectAnswer: q.CorrectAnswer,
	}
	if selected != nil {
		choice := *selected
		record.UserAnswer = &choice
		record.IsCorrect = choice == q.CorrectAnswer
	}
	m.results.Record(record)
	m.locked = true
	return true
}

func (m *Machine) startTimerLocked() {
	m.stopTimerLocked()
	m.remaining = m.perQuestion
	gen := m.generation
	m.cancelTimer = m.scheduler.Every(m.tick, func() { m.onTick(gen) })
}

// stopTimerLocked cancels the live timer and invalidates ticks already in flight.
func (m *Machine) stopTimerLocked() {
	if m.cancelTimer != nil {
		m.cancelTimer()
		m.cancelTimer = nil
	}
	m.generation++
}

func (m *Machine) onTick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || m.phase != PhaseActive || m.locked {
		return
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.submitLocked(nil)
	}
	m.broadcastLocked()
}

func (m *Machine) broadcastLocked() {
	snap := m.snapshotLocked()
	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest view so slow readers never block a transition
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:         m.phase,
		CurrentIndex:  m.index,
		Total:         len(m.questions),
		TimeRemaining: m.remaining,
		Locked:        m.locked,
		Score:         m.results.Score(),
	}
	if m.phase == PhaseActive {
		q := m.questions[m.index]
		snap.Question = &QuestionView{
			QuestionText: q.QuestionText,
			Options:      append([]string(nil), q.Options...),
		}
	}
	if m.locked && m.results.Len() > 0 {
		answers := m.results.Answers()
		last := answers[len(answers)-1]
		snap.LastAnswer = &last
	}
	if m.phase == PhaseCompleted {
		summary := m.results.Finalize(len(m.questions))
		snap.Summary = &summary
	}
	return snap
}

package app_test

import (
	"testing"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

func twoQuestions() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{QuestionText: "Capital of France?", CorrectAnswer: "Paris", Options: []string{"Rome", "Paris", "Berlin", "Madrid"}},
		{QuestionText: "2 + 2?", CorrectAnswer: "4", Options: []string{"3", "4", "5", "22"}},
	}
}

func startedMachine(t *testing.T, seconds int) (*app.Machine, *app.ManualScheduler) {
	t.Helper()
	sched := app.NewManualScheduler()
	m := app.NewMachine(sched)
	if !m.Start(twoQuestions(), seconds) {
		t.Fatalf("expected start to apply")
	}
	return m, sched
}

func TestStartEntersFirstQuestion(t *testing.T) {
	m, sched := startedMachine(t, 30)

	snap := m.Snapshot()
	if snap.Phase != app.PhaseActive || snap.CurrentIndex != 0 || snap.Total != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.TimeRemaining != 30 || snap.Locked {
		t.Fatalf("expected full unlocked timer, got %+v", snap)
	}
	if snap.Question == nil || snap.Question.QuestionText != "Capital of France?" || len(snap.Question.Options) != 4 {
		t.Fatalf("unexpected question view %+v", snap.Question)
	}
	if sched.Live() != 1 {
		t.Fatalf("expected one live timer, got %d", sched.Live())
	}
}

func TestStartRejectsEmptyInput(t *testing.T) {
	m := app.NewMachine(app.NewManualScheduler())
	if m.Start(nil, 30) {
		t.Fatalf("expected start with no questions to be ignored")
	}
	if m.Start(twoQuestions(), 0) {
		t.Fatalf("expected start with no time to be ignored")
	}
	if m.Snapshot().Phase != app.PhaseIdle {
		t.Fatalf("expected machine to stay idle")
	}
}

func TestSubmitAnswerScoresAndLocks(t *testing.T) {
	m, sched := startedMachine(t, 30)

	if len(m.Answers()) != 0 {
		t.Fatalf("expected no answers before submit")
	}
	if !m.SubmitAnswer(domain.Choice("Paris")) {
		t.Fatalf("expected submit to apply")
	}
	snap := m.Snapshot()
	if !snap.Locked || snap.Score != 1 {
		t.Fatalf("expected locked with score 1, got %+v", snap)
	}
	answers := m.Answers()
	if len(answers) != 1 || !answers[0].IsCorrect || *answers[0].UserAnswer != "Paris" {
		t.Fatalf("unexpected answers %+v", answers)
	}
	if snap.LastAnswer == nil || snap.LastAnswer.CorrectAnswer != "Paris" {
		t.Fatalf("expected last answer in snapshot, got %+v", snap.LastAnswer)
	}
	if sched.Live() != 0 {
		t.Fatalf("expected timer stopped on submit")
	}
}

func TestSubmitAnswerTwiceIsNoop(t *testing.T) {
	m, _ := startedMachine(t, 30)

	m.SubmitAnswer(domain.Choice("Rome"))
	if m.SubmitAnswer(domain.Choice("Paris")) {
		t.Fatalf("expected second submit to be ignored")
	}
	if m.OnTimerExpire() {
		t.Fatalf("expected timeout after submit to be ignored")
	}
	answers := m.Answers()
	if len(answers) != 1 || answers[0].IsCorrect || m.Snapshot().Score != 0 {
		t.Fatalf("expected the first submission to stand, got %+v", answers)
	}
}

func TestTimerExpiryRecordsUnanswered(t *testing.T) {
	m, sched := startedMachine(t, 3)

	sched.Tick()
	sched.Tick()
	if snap := m.Snapshot(); snap.TimeRemaining != 1 || snap.Locked {
		t.Fatalf("expected 1s left and unlocked, got %+v", snap)
	}
	sched.Tick()

	snap := m.Snapshot()
	if !snap.Locked || snap.TimeRemaining != 0 {
		t.Fatalf("expected locked at zero, got %+v", snap)
	}
	answers := m.Answers()
	if len(answers) != 1 || answers[0].UserAnswer != nil || answers[0].IsCorrect {
		t.Fatalf("expected unanswered record, got %+v", answers)
	}
	if sched.Live() != 0 {
		t.Fatalf("expected timer cancelled after expiry")
	}
	if m.SubmitAnswer(domain.Choice("Paris")) {
		t.Fatalf("expected late submit to be ignored")
	}
}

func TestSubmitNoneMatchesTimeoutShape(t *testing.T) {
	manual, _ := startedMachine(t, 30)
	manual.SubmitAnswer(nil)

	timed, _ := startedMachine(t, 30)
	timed.OnTimerExpire()

	a, b := manual.Answers()[0], timed.Answers()[0]
	if a.UserAnswer != nil || b.UserAnswer != nil || a.IsCorrect || b.IsCorrect || a.QuestionText != b.QuestionText {
		t.Fatalf("expected identical unanswered records, got %+v and %+v", a, b)
	}
}

func TestAdvanceRequiresLock(t *testing.T) {
	m, _ := startedMachine(t, 30)
	if m.Advance() {
		t.Fatalf("expected advance on unlocked question to be ignored")
	}
	m.SubmitAnswer(nil)
	if !m.Advance() {
		t.Fatalf("expected advance to apply")
	}
	snap := m.Snapshot()
	if snap.CurrentIndex != 1 || snap.Locked || snap.TimeRemaining != 30 {
		t.Fatalf("expected fresh second question, got %+v", snap)
	}
	if len(m.Answers()) != snap.CurrentIndex {
		t.Fatalf("expected answers to match index before submit")
	}
}

func TestStaleTickIsIgnoredAfterAdvance(t *testing.T) {
	sched := &capturingScheduler{}
	m := app.NewMachine(sched)
	m.Start(twoQuestions(), 2)

	stale := sched.fns[0]
	m.SubmitAnswer(domain.Choice("Paris"))
	m.Advance()

	stale()
	stale()
	if snap := m.Snapshot(); snap.TimeRemaining != 2 || snap.Locked {
		t.Fatalf("expected stale ticks to be ignored, got %+v", snap)
	}
	if len(m.Answers()) != 1 {
		t.Fatalf("expected only the first answer, got %d", len(m.Answers()))
	}
}

func TestFullQuizSummary(t *testing.T) {
	finished := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sched := app.NewManualScheduler()
	m := app.NewMachineWithClock(sched, func() time.Time { return finished })
	m.Start(twoQuestions(), 2)

	m.SubmitAnswer(domain.Choice("Paris"))
	m.Advance()
	sched.Tick()
	sched.Tick()
	if _, ok := m.Summary(); ok {
		t.Fatalf("expected no summary before completion")
	}
	if !m.Advance() {
		t.Fatalf("expected completion")
	}

	summary, ok := m.Summary()
	if !ok {
		t.Fatalf("expected summary")
	}
	if summary != (domain.Summary{Score: 1, Total: 2, Percent: 50}) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	snap := m.Snapshot()
	if snap.Phase != app.PhaseCompleted || snap.Summary == nil || snap.Question != nil {
		t.Fatalf("unexpected completed snapshot %+v", snap)
	}
	if !m.CompletedAt().Equal(finished) {
		t.Fatalf("expected completion time %v, got %v", finished, m.CompletedAt())
	}
	if m.Advance() || m.SubmitAnswer(nil) {
		t.Fatalf("expected completed quiz to ignore events")
	}
}

func TestResetClearsSession(t *testing.T) {
	m, sched := startedMachine(t, 30)
	m.SubmitAnswer(domain.Choice("Paris"))
	m.Advance()

	m.Reset()
	snap := m.Snapshot()
	if snap.Phase != app.PhaseIdle || snap.Score != 0 || snap.Total != 0 || len(m.Answers()) != 0 {
		t.Fatalf("expected cleared session, got %+v", snap)
	}
	if sched.Live() != 0 {
		t.Fatalf("expected timer cancelled on reset")
	}
	if !m.Start(twoQuestions(), 10) {
		t.Fatalf("expected restart after reset")
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	m, sched := startedMachine(t, 5)
	ch, cancel := m.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.TimeRemaining != 5 {
		t.Fatalf("expected initial snapshot, got %+v", initial)
	}
	sched.Tick()
	update := <-ch
	if update.TimeRemaining != 4 {
		t.Fatalf("expected tick update, got %+v", update)
	}
}

func TestInvariantsAcrossRandomPlay(t *testing.T) {
	sched := app.NewManualScheduler()
	m := app.NewMachine(sched)
	questions := append(twoQuestions(), twoQuestions()...)
	m.Start(questions, 2)

	for i := 0; i < len(questions); i++ {
		snap := m.Snapshot()
		if len(m.Answers()) != snap.CurrentIndex {
			t.Fatalf("before submit: answers=%d index=%d", len(m.Answers()), snap.CurrentIndex)
		}
		switch i % 3 {
		case 0:
			m.SubmitAnswer(domain.Choice(questions[i].CorrectAnswer))
		case 1:
			sched.Tick()
			sched.Tick()
		case 2:
			m.SubmitAnswer(domain.Choice("wrong"))
		}
		m.SubmitAnswer(domain.Choice(questions[i].CorrectAnswer))
		snap = m.Snapshot()
		if len(m.Answers()) != snap.CurrentIndex+1 {
			t.Fatalf("after submit: answers=%d index=%d", len(m.Answers()), snap.CurrentIndex)
		}
		if snap.Score > len(m.Answers()) {
			t.Fatalf("score %d exceeds answers %d", snap.Score, len(m.Answers()))
		}
		m.Advance()
	}
	if m.Snapshot().Phase != app.PhaseCompleted {
		t.Fatalf("expected completion")
	}
}

// capturingScheduler keeps every scheduled fn so tests can fire stale ones.
type capturingScheduler struct {
	fns []func()
}

func (s *capturingScheduler) Every(_ time.Duration, fn func()) func() {
	s.fns = append(s.fns, fn)
	return func() {}
}

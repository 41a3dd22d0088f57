package app

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// Cancel must not wait for an in-flight fn to finish.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler is the wall-clock Scheduler.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler fires tasks only when Tick is called. Useful in tests.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	tasks map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.tasks[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
	}
}

// Tick runs every live task once.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.tasks))
	for _, fn := range s.tasks {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Live reports how many tasks are still scheduled.
func (s *ManualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

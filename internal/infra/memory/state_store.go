package memory

import (
	"context"
	"sync"
	"time"

	"trivia-quiz/internal/state"
)

// StateStore is an in-memory implementation of state.Store.
type StateStore struct {
	clock func() time.Time

	mu    sync.RWMutex
	slots map[string]slot
}

type slot struct {
	value     string
	expiresAt time.Time
}

func NewStateStore() *StateStore {
	return NewStateStoreWithClock(time.Now)
}

// NewStateStoreWithClock allows deterministic expiry in tests.
func NewStateStoreWithClock(clock func() time.Time) *StateStore {
	return &StateStore{
		clock: clock,
		slots: make(map[string]slot),
	}
}

func (s *StateStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.slots[key]
	if !ok || s.expired(entry) {
		return "", state.ErrNotFound
	}
	return entry.value, nil
}

func (s *StateStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = s.newSlot(value, ttl)
	return nil
}

func (s *StateStore) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.slots[key]; ok && !s.expired(entry) {
		return entry.value, nil
	}
	s.slots[key] = s.newSlot(value, ttl)
	return value, nil
}

func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

func (s *StateStore) newSlot(value string, ttl time.Duration) slot {
	entry := slot{value: value}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}
	return entry
}

func (s *StateStore) expired(entry slot) bool {
	return !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock())
}

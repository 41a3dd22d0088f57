package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trivia-quiz/internal/state"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStateStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Get(ctx, state.TokenKey); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, state.TokenKey, "abc", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, state.TokenKey, "def", 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, state.TokenKey)
	if err != nil || got != "def" {
		t.Errorf("expected def, got %q (%v)", got, err)
	}
	if err := s.Delete(ctx, state.TokenKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, state.TokenKey); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected slot removed, got %v", err)
	}
}

func TestStateStoreSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t)
	s.clock = func() time.Time { return now }

	first, err := s.SetIfAbsent(ctx, state.TokenKey, "first", time.Hour)
	if err != nil {
		t.Fatalf("SetIfAbsent: %v", err)
	}
	second, err := s.SetIfAbsent(ctx, state.TokenKey, "second", time.Hour)
	if err != nil {
		t.Fatalf("SetIfAbsent 2: %v", err)
	}
	if first != "first" || second != "first" {
		t.Errorf("expected first writer to win, got %q then %q", first, second)
	}

	_ = s.Set(ctx, state.ThemeKey, "light", 0)

	now = now.Add(2 * time.Hour)
	if got, err := s.Get(ctx, state.ThemeKey); err != nil || got != "light" {
		t.Errorf("expected slot without ttl to survive, got %q (%v)", got, err)
	}
	third, err := s.SetIfAbsent(ctx, state.TokenKey, "third", time.Hour)
	if err != nil {
		t.Fatalf("SetIfAbsent 3: %v", err)
	}
	if third != "third" {
		t.Errorf("expected expired slot to be replaced, got %q", third)
	}
}

func TestStateStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = s.Set(ctx, state.ThemeKey, "light", 0)
	s.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, state.ThemeKey)
	if err != nil || got != "light" {
		t.Errorf("expected light after reopen, got %q (%v)", got, err)
	}
}

func TestStateStoreUsesWriteAheadLog(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}
	var timeout int
	if err := s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy timeout 5000, got %d", timeout)
	}
}

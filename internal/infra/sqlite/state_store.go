package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trivia-quiz/internal/state"

	_ "modernc.org/sqlite"
)

// StateStore keeps state slots in a local SQLite file, the closest thing to
// browser local storage for a single-player process.
type StateStore struct {
	db    *sql.DB
	clock func() time.Time
}

func New(dbPath string) (*StateStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &StateStore{db: db, clock: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS state_slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);`)
	return err
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM state_slots WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, s.clock().UnixNano(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", state.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load slot %s: %w", key, err)
	}
	return value, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state_slots (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.expiresAt(ttl),
	)
	if err != nil {
		return fmt.Errorf("store slot %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state_slots (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
		 WHERE state_slots.expires_at != 0 AND state_slots.expires_at <= ?`,
		key, value, s.expiresAt(ttl), s.clock().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("claim slot %s: %w", key, err)
	}
	return s.Get(ctx, key)
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state_slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) expiresAt(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return s.clock().Add(ttl).UnixNano()
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz/internal/state"
)

// StateStore keeps state slots in the state_slots table. A NULL expires_at never expires.
type StateStore struct {
	pool *pgxpool.Pool
}

func NewStateStore(pool *pgxpool.Pool) *StateStore {
	return &StateStore{pool: pool}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM state_slots WHERE key=$1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", state.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load slot %s: %w", key, err)
	}
	return value, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO state_slots (key, value, expires_at, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, expires_at=EXCLUDED.expires_at, updated_at=now()`,
		key, value, expiresAt(ttl),
	)
	if err != nil {
		return fmt.Errorf("store slot %s: %w", key, err)
	}
	return nil
}

// SetIfAbsent only overwrites a row whose previous value has expired.
func (s *StateStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (string, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO state_slots (key, value, expires_at, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, expires_at=EXCLUDED.expires_at, updated_at=now()
		 WHERE state_slots.expires_at IS NOT NULL AND state_slots.expires_at <= now()`,
		key, value, expiresAt(ttl),
	)
	if err != nil {
		return "", fmt.Errorf("claim slot %s: %w", key, err)
	}
	return s.Get(ctx, key)
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM state_slots WHERE key=$1`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func expiresAt(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	at := time.Now().Add(ttl)
	return &at
}

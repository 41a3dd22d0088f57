// Package state holds the small persisted key-value surface the quiz needs:
// one slot for the bank session token and one for the UI theme.
package state

import (
	"context"
	"errors"
	"time"
)

const (
	// TokenKey is the slot holding the question bank session token.
	TokenKey = "opentdb_session_token"
	// ThemeKey is the slot holding the user's theme preference.
	ThemeKey = "quiz_theme"
)

// ErrNotFound is returned by Store.Get when a slot is empty or expired.
var ErrNotFound = errors.New("state slot not found")

// Store persists named string slots (memory, Redis, Postgres, SQLite).
// Expiry is chosen per write; a zero ttl keeps the slot until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetIfAbsent writes value only when the slot is empty and returns
	// whichever value the slot holds afterwards.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

package state

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// TokenStore keeps the bank session token in the TokenKey slot.
// The bank forgets idle tokens, so the slot expires after ttl.
type TokenStore struct {
	store Store
	ttl   time.Duration
}

func NewTokenStore(store Store, ttl time.Duration) *TokenStore {
	return &TokenStore{store: store, ttl: ttl}
}

// Get returns the persisted token. Storage failures count as "no token".
func (t *TokenStore) Get(ctx context.Context) (string, bool) {
	token, err := t.store.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("token store unavailable, treating token as absent", "error", err)
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// Set overwrites the persisted token.
func (t *TokenStore) Set(ctx context.Context, token string) error {
	return t.store.Set(ctx, TokenKey, token, t.ttl)
}

// Claim stores token unless another writer got there first; the winning token is returned.
func (t *TokenStore) Claim(ctx context.Context, token string) (string, error) {
	return t.store.SetIfAbsent(ctx, TokenKey, token, t.ttl)
}

// Clear removes the persisted token.
func (t *TokenStore) Clear(ctx context.Context) error {
	return t.store.Delete(ctx, TokenKey)
}

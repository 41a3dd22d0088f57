package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/state"
)

// StateStore keeps state slots as plain Redis strings under "quiz:state:{key}".
// A zero ttl keeps a slot forever.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", state.ErrNotFound
	}
	return value, err
}

func (s *StateStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

// SetIfAbsent relies on SETNX so concurrent processes agree on one value.
func (s *StateStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (string, error) {
	stored, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return "", err
	}
	if stored {
		return value, nil
	}
	current, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// the winner expired or was cleared between SETNX and GET
		return value, s.Set(ctx, key, value, ttl)
	}
	return current, err
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *StateStore) key(key string) string {
	return "quiz:state:" + key
}

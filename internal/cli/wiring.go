package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/bank"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
	pgstate "trivia-quiz/internal/infra/postgres"
	redisstate "trivia-quiz/internal/infra/redis"
	"trivia-quiz/internal/infra/sqlite"
	"trivia-quiz/internal/state"
)

// openStateStore builds the persisted slot store for the configured driver.
// The returned func releases the backing connection.
func openStateStore(ctx context.Context, cfg config.Config) (state.Store, func(), error) {
	switch cfg.State.Driver {
	case "memory":
		return memory.NewStateStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstate.NewStateStore(client), func() { client.Close() }, nil
	case "postgres":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstate.NewStateStore(pool), pool.Close, nil
	case "sqlite", "":
		st, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				slog.Warn("close sqlite state store", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown state driver %q", cfg.State.Driver)
	}
}

// newTokenStore keeps the session token for state.token_ttl, since the bank forgets idle tokens.
func newTokenStore(cfg config.Config, store state.Store) *state.TokenStore {
	return state.NewTokenStore(store, config.Duration(cfg.State.TokenTTL, 6*time.Hour))
}

func newBankClient(cfg config.Config, tokens bank.TokenStore) *bank.Client {
	return bank.NewClient(bank.Config{
		APIURL:      cfg.Bank.APIURL,
		TokenURL:    cfg.Bank.TokenURL,
		Timeout:     config.Duration(cfg.Bank.Timeout, bank.DefaultTimeout),
		Attempts:    cfg.Bank.Attempts,
		BackoffStep: config.Duration(cfg.Bank.BackoffStep, bank.DefaultBackoffStep),
	}, tokens)
}

// newQuizService assembles the bank client, fallback set and state machine.
func newQuizService(cfg config.Config, store state.Store) *app.QuizService {
	client := newBankClient(cfg, newTokenStore(cfg, store))
	machine := app.NewMachine(app.TickerScheduler{})
	return app.NewQuizService(client, app.NewFallback(), machine)
}

func quizDefaults(cfg config.Config) domain.QuizParameters {
	params := domain.QuizParameters{
		Amount:             cfg.Quiz.Amount,
		Category:           cfg.Quiz.Category,
		Difficulty:         domain.Difficulty(cfg.Quiz.Difficulty),
		PerQuestionSeconds: cfg.Quiz.PerQuestionSeconds,
	}
	if params.Amount <= 0 {
		params.Amount = 10
	}
	if params.PerQuestionSeconds <= 0 {
		params.PerQuestionSeconds = app.DefaultPerQuestionSeconds
	}
	return params
}

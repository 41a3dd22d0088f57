package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Bank struct {
		APIURL      string `yaml:"api_url" validate:"omitempty,url"`
		TokenURL    string `yaml:"token_url" validate:"omitempty,url"`
		Timeout     string `yaml:"timeout"`
		Attempts    int    `yaml:"attempts" validate:"gte=0,lte=10"`
		BackoffStep string `yaml:"backoff_step"`
	} `yaml:"bank"`
	Quiz struct {
		Amount             int    `yaml:"amount" validate:"gte=0,lte=50"`
		Category           int    `yaml:"category" validate:"gte=0"`
		Difficulty         string `yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
		PerQuestionSeconds int    `yaml:"per_question_seconds" validate:"gte=0"`
	} `yaml:"quiz"`
	State struct {
		Driver   string `yaml:"driver" validate:"omitempty,oneof=memory redis postgres sqlite"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"state"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Bank.Timeout = "15s"
	cfg.Bank.Attempts = 3
	cfg.Bank.BackoffStep = "1200ms"
	cfg.Quiz.Amount = 10
	cfg.Quiz.PerQuestionSeconds = 30
	cfg.State.Driver = "sqlite"
	cfg.State.TokenTTL = "6h"
	cfg.SQLite.Path = "quiz-state.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field driver requirements.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, fmt.Sprintf("field %q failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config:\n- %s", strings.Join(messages, "\n- "))
	}
	switch cfg.State.Driver {
	case "redis":
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("invalid config: redis.addr is required for the redis state driver")
		}
	case "postgres":
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("invalid config: postgres.url is required for the postgres state driver")
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("invalid config: sqlite.path is required for the sqlite state driver")
		}
	}
	return nil
}

// Duration parses a duration string or returns the fallback if empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

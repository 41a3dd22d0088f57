package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// Response codes returned by the bank.
const (
	codeSuccess          = 0
	codeNoResults        = 1
	codeInvalidParameter = 2
	codeTokenNotFound    = 3
	codeTokenEmpty       = 4
)

const (
	DefaultAPIURL      = "https://opentdb.com/api.php"
	DefaultTokenURL    = "https://opentdb.com/api_token.php"
	DefaultTimeout     = 15 * time.Second
	DefaultAttempts    = 3
	DefaultBackoffStep = 1200 * time.Millisecond
)

// TokenStore persists the session token between quizzes.
type TokenStore interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Claim(ctx context.Context, token string) (string, error)
	Clear(ctx context.Context) error
}

// Config controls where and how hard the client talks to the bank.
type Config struct {
	APIURL      string
	TokenURL    string
	Timeout     time.Duration
	Attempts    int
	BackoffStep time.Duration
}

// Client fetches questions from the remote bank, keeping the session token
// alive across quizzes.
type Client struct {
	cfg      Config
	http     *http.Client
	tokens   TokenStore
	validate *validator.Validate
	sleep    func(ctx context.Context, d time.Duration) error
	sf       singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRand makes option shuffling deterministic.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Client) { c.rnd = rnd }
}

// WithSleep replaces the backoff wait, mostly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

func NewClient(cfg Config, tokens TokenStore, opts ...Option) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = DefaultBackoffStep
	}
	c := &Client{
		cfg:      cfg,
		http:     http.DefaultClient,
		tokens:   tokens,
		validate: validator.New(),
		sleep:    sleepContext,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type questionsResponse struct {
	ResponseCode int    `json:"response_code"`
	Results      []Item `json:"results"`
}

type tokenResponse struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	Token           string `json:"token"`
}

// FetchQuestions resolves a session token and asks the bank for questions.
// Every failure is a *domain.FetchError wrapping one of the domain fetch errors.
func (c *Client) FetchQuestions(ctx context.Context, params domain.QuizParameters) ([]domain.QuestionRecord, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, &domain.FetchError{Err: fmt.Errorf("%w: %v", domain.ErrInvalidParameters, err)}
	}

	token, err := c.resolveToken(ctx)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}

	attempts := 0
	for attempt := 0; attempt < c.cfg.Attempts; attempt++ {
		attempts++
		resp, err := c.getQuestions(ctx, params, token)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &domain.FetchError{Attempts: attempts, Err: fmt.Errorf("%w: %v", domain.ErrFetchExhausted, ctx.Err())}
			}
			slog.Warn("question request failed", "attempt", attempts, "error", err)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, &domain.FetchError{Attempts: attempts, Err: fmt.Errorf("%w: %v", domain.ErrFetchExhausted, err)}
			}
			continue
		}

		slog.Debug("question response", "attempt", attempts, "code", resp.ResponseCode, "results", len(resp.Results))
		switch resp.ResponseCode {
		case codeSuccess:
			records := c.normalize(resp.Results)
			if len(records) == 0 {
				return nil, &domain.FetchError{Attempts: attempts, Err: domain.ErrEmptyResult}
			}
			return records, nil
		case codeNoResults:
			return nil, &domain.FetchError{Attempts: attempts, Err: domain.ErrInsufficientQuestions}
		case codeInvalidParameter:
			return nil, &domain.FetchError{Attempts: attempts, Err: domain.ErrInvalidParameters}
		case codeTokenNotFound:
			slog.Info("session token not recognized, requesting a new one")
			if err := c.tokens.Clear(ctx); err != nil {
				slog.Warn("clear session token", "error", err)
			}
			token, err = c.resolveToken(ctx)
			if err != nil {
				return nil, &domain.FetchError{Attempts: attempts, Err: err}
			}
		case codeTokenEmpty:
			slog.Info("session token exhausted, resetting")
			if err := c.ResetToken(ctx, token); err != nil {
				return nil, &domain.FetchError{Attempts: attempts, Err: err}
			}
		default:
			slog.Warn("unexpected response code", "attempt", attempts, "code", resp.ResponseCode)
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, &domain.FetchError{Attempts: attempts, Err: fmt.Errorf("%w: %v", domain.ErrFetchExhausted, err)}
			}
		}
	}
	return nil, &domain.FetchError{Attempts: attempts, Err: domain.ErrFetchExhausted}
}

// ResetToken asks the bank to forget which questions the token has already served.
func (c *Client) ResetToken(ctx context.Context, token string) error {
	u, err := url.Parse(c.cfg.TokenURL)
	if err != nil {
		return fmt.Errorf("%w: token url: %v", domain.ErrToken, err)
	}
	q := u.Query()
	q.Set("command", "reset")
	q.Set("token", token)
	u.RawQuery = q.Encode()

	var resp tokenResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return fmt.Errorf("%w: reset: %v", domain.ErrToken, err)
	}
	if resp.ResponseCode != codeSuccess {
		return fmt.Errorf("%w: reset failed with code %d", domain.ErrToken, resp.ResponseCode)
	}
	slog.Info("session token reset")
	return nil
}

// resolveToken returns the stored token or issues and persists a new one.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(ctx); ok {
		return token, nil
	}
	result, err, _ := c.sf.Do("token", func() (interface{}, error) {
		token, err := c.requestToken(ctx)
		if err != nil {
			return "", err
		}
		winner, err := c.tokens.Claim(ctx, token)
		if err != nil {
			// the token still works for this process
			slog.Warn("persist session token", "error", err)
			return token, nil
		}
		return winner, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	u, err := url.Parse(c.cfg.TokenURL)
	if err != nil {
		return "", fmt.Errorf("%w: token url: %v", domain.ErrToken, err)
	}
	q := u.Query()
	q.Set("command", "request")
	u.RawQuery = q.Encode()

	var resp tokenResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return "", fmt.Errorf("%w: request: %v", domain.ErrToken, err)
	}
	if resp.ResponseCode != codeSuccess || resp.Token == "" {
		return "", fmt.Errorf("%w: unexpected token response code %d", domain.ErrToken, resp.ResponseCode)
	}
	slog.Info("issued session token")
	return resp.Token, nil
}

func (c *Client) getQuestions(ctx context.Context, params domain.QuizParameters, token string) (questionsResponse, error) {
	u, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return questionsResponse{}, err
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(params.Amount))
	if params.Category > 0 {
		q.Set("category", strconv.Itoa(params.Category))
	}
	if params.Difficulty != domain.DifficultyAny {
		q.Set("difficulty", string(params.Difficulty))
	}
	q.Set("type", domain.QuestionTypeMultiple)
	q.Set("token", token)
	u.RawQuery = q.Encode()

	var resp questionsResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return questionsResponse{}, err
	}
	return resp, nil
}

// getJSON performs one GET bounded by the configured timeout.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("http status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) normalize(items []Item) []domain.QuestionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]domain.QuestionRecord, 0, len(items))
	for _, item := range items {
		record, ok := recordFromItem(item, c.rnd)
		if !ok {
			slog.Warn("dropping malformed question", "question", item.Question)
			continue
		}
		records = append(records, record)
	}
	return records
}

// backoff waits BackoffStep*(attempt+1), including after the last attempt.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	delay := c.cfg.BackoffStep * time.Duration(attempt+1)
	slog.Debug("backing off", "delay", delay)
	return c.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

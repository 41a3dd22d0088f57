package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrToken is returned when a session token cannot be issued or reset.
	ErrToken = errors.New("session token error")
	// ErrInsufficientQuestions means the bank has fewer questions than requested for the filters.
	ErrInsufficientQuestions = errors.New("not enough questions for the selected filters, try different settings")
	// ErrInvalidParameters means the bank (or local validation) rejected the quiz parameters.
	ErrInvalidParameters = errors.New("invalid parameters, please review your settings")
	// ErrEmptyResult means the bank reported success but returned no usable questions.
	ErrEmptyResult = errors.New("no questions returned")
	// ErrFetchExhausted means every attempt was consumed without a result.
	ErrFetchExhausted = errors.New("failed to fetch questions, please try again")
)

// FetchError reports a failed question fetch and how many bank calls it used.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch questions (attempts=%d): %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

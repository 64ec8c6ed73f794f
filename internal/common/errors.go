// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Remote API errors.
	ErrFetchFailed    = errors.New("fetch failed")
	ErrStaleResponse  = errors.New("stale response discarded")
	ErrPageOutOfRange = errors.New("page out of range")

	// Comparison errors.
	ErrNotEnoughRecords = errors.New("at least two records are needed to compare")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsStale reports whether err only signals that a newer request superseded
// this one. Callers usually drop such errors silently.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleResponse)
}

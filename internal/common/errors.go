// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// ErrValidation covers malformed input, such as an empty category name.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers lookups of absent categories, subcategories, or parents.
	ErrNotFound = errors.New("not found")
	// ErrForbidden covers operations the catalog never permits, such as
	// editing a sentinel or reparenting a non-leaf.
	ErrForbidden = errors.New("operation not permitted")
	// ErrPersistence covers serialize/deserialize and key-value store failures.
	ErrPersistence = errors.New("persistence failure")
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

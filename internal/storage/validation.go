package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/common"
	"github.com/tallyfin/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRecord = errors.New("invalid record")

	// ErrRecordNotFound wraps the shared not-found sentinel so callers can
	// branch without importing this package.
	ErrRecordNotFound = fmt.Errorf("%w: record", common.ErrNotFound)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a transaction before it is written.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction is nil", ErrInvalidRecord)
	}
	if txn.ID == uuid.Nil {
		return fmt.Errorf("%w: transaction missing ID", ErrInvalidRecord)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: transaction missing date", ErrInvalidRecord)
	}
	return nil
}

// validateBudget validates a budget before it is written.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget is nil", ErrInvalidRecord)
	}
	if budget.ID == uuid.Nil {
		return fmt.Errorf("%w: budget missing ID", ErrInvalidRecord)
	}
	if budget.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: budget missing category ID", ErrInvalidRecord)
	}
	return nil
}

// Package service defines the contracts between the category core and its
// collaborators: durable storage, the transaction and budget stores, and
// change observers.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/model"
)

// KVStore is the durable key-value store the category collection is
// serialized into. Get returns an error wrapping the not-found sentinel when
// the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// TransactionStore is the transaction collaborator consumed by the
// consistency cascades. Update rewrites a single record in place.
type TransactionStore interface {
	FetchAll(ctx context.Context) ([]model.Transaction, error)
	Update(ctx context.Context, txn model.Transaction) error
}

// BudgetStore is the budget collaborator consumed by the consistency
// cascades.
type BudgetStore interface {
	FetchAll(ctx context.Context) ([]model.Budget, error)
	Update(ctx context.Context, budget model.Budget) error
}

// ChangeOp identifies the kind of catalog mutation an observer is told about.
type ChangeOp string

const (
	// ChangeOpAdd fires after a category or subcategory is created.
	ChangeOpAdd ChangeOp = "add"
	// ChangeOpUpdate fires after a rename, reglyph, reparent, or retype.
	ChangeOpUpdate ChangeOp = "update"
	// ChangeOpConvert fires after a subcategory is promoted to a category.
	ChangeOpConvert ChangeOp = "convert"
	// ChangeOpDelete fires after a soft delete.
	ChangeOpDelete ChangeOp = "delete"
	// ChangeOpRepair fires after startup orphan repair rewrote references.
	ChangeOpRepair ChangeOp = "repair"
	// ChangeOpReset fires after a catalog reset to the built-in set.
	ChangeOpReset ChangeOp = "reset"
)

// CategoryChange describes a completed catalog mutation and its cascades.
type CategoryChange struct {
	Op      ChangeOp
	Name    string
	OldType model.CategoryType
	NewType model.CategoryType
	ID      uuid.UUID
}

// CategoryChangeObserver receives a notification after every successful
// mutating operation and its cascades. Observers must not call back into the
// catalog from the notification.
type CategoryChangeObserver interface {
	CategoriesChanged(change CategoryChange)
}

// CategoryChangeFunc adapts a function to the observer interface.
type CategoryChangeFunc func(change CategoryChange)

// CategoriesChanged implements CategoryChangeObserver.
func (f CategoryChangeFunc) CategoriesChanged(change CategoryChange) {
	f(change)
}

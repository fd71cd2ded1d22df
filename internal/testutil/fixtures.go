package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyfin/tally/internal/model"
	"github.com/tallyfin/tally/internal/storage"
)

// MustSaveTransaction stores a transaction fixture referencing the given
// category, failing the test on error. Amounts are given as strings to keep
// decimal precision obvious in test tables.
func MustSaveTransaction(t *testing.T, store *storage.SQLiteStorage, merchant, amount string, cat model.Category) model.Transaction {
	t.Helper()

	txn := model.Transaction{
		ID:           uuid.New(),
		Date:         time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Merchant:     merchant,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Amount:       MustDecimal(t, amount),
		CreatedAt:    time.Now(),
	}

	if err := store.SaveTransaction(context.Background(), txn); err != nil {
		t.Fatalf("failed to save transaction fixture: %v", err)
	}
	return txn
}

// MustSaveBudget stores a budget fixture for the given category, failing the
// test on error.
func MustSaveBudget(t *testing.T, budgets *storage.BudgetStore, amount string, cat model.Category) model.Budget {
	t.Helper()

	budget := model.Budget{
		ID:           uuid.New(),
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Amount:       MustDecimal(t, amount),
		Period:       "monthly",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := budgets.SaveBudget(context.Background(), budget); err != nil {
		t.Fatalf("failed to save budget fixture: %v", err)
	}
	return budget
}

// MustDecimal parses a decimal literal, failing the test on error.
func MustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", value, err)
	}
	return d
}

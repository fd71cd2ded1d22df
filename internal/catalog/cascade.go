package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tallyfin/tally/internal/model"
	"github.com/tallyfin/tally/internal/service"
)

// coordinator propagates category mutations into the transaction and budget
// collaborators. Every cascade is best-effort: a failing record does not stop
// the scan over the remaining records, and failures are aggregated into the
// returned error.
type coordinator struct {
	transactions service.TransactionStore
	budgets      service.BudgetStore
}

func newCoordinator(transactions service.TransactionStore, budgets service.BudgetStore) *coordinator {
	return &coordinator{
		transactions: transactions,
		budgets:      budgets,
	}
}

// deleteCascade redirects every transaction and budget referencing the
// deleted record, by id or by legacy name string, to the sentinel of the
// record's original type. Amounts are untouched.
func (c *coordinator) deleteCascade(ctx context.Context, deleted, sentinel model.Category) error {
	var errs []error

	txns, err := c.transactions.FetchAll(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete cascade: fetch transactions: %w", err))
	}
	rewritten := 0
	for _, txn := range txns {
		if txn.CategoryID != deleted.ID && !strings.EqualFold(txn.CategoryName, deleted.Name) {
			continue
		}
		txn.CategoryID = sentinel.ID
		txn.CategoryName = sentinel.Name
		if err := c.transactions.Update(ctx, txn); err != nil {
			errs = append(errs, fmt.Errorf("delete cascade: transaction %s: %w", txn.ID, err))
			continue
		}
		rewritten++
	}

	budgets, err := c.budgets.FetchAll(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete cascade: fetch budgets: %w", err))
	}
	for _, budget := range budgets {
		if budget.CategoryID != deleted.ID && !strings.EqualFold(budget.CategoryName, deleted.Name) {
			continue
		}
		budget.CategoryID = sentinel.ID
		budget.CategoryName = sentinel.Name
		if err := c.budgets.Update(ctx, budget); err != nil {
			errs = append(errs, fmt.Errorf("delete cascade: budget %s: %w", budget.ID, err))
			continue
		}
		rewritten++
	}

	slog.Debug("delete cascade complete",
		"category", deleted.Name,
		"sentinel", sentinel.Name,
		"rewritten", rewritten,
		"failures", len(errs))
	return errors.Join(errs...)
}

// renameCascade rewrites the denormalized display name on id-linked budgets.
func (c *coordinator) renameCascade(ctx context.Context, id uuid.UUID, newName string) error {
	budgets, err := c.budgets.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("rename cascade: fetch budgets: %w", err)
	}

	var errs []error
	for _, budget := range budgets {
		if budget.CategoryID != id || budget.CategoryName == newName {
			continue
		}
		budget.CategoryName = newName
		if err := c.budgets.Update(ctx, budget); err != nil {
			errs = append(errs, fmt.Errorf("rename cascade: budget %s: %w", budget.ID, err))
		}
	}

	return errors.Join(errs...)
}

// retypeCascade flips the amount sign of every transaction referencing the
// changed record to match its new type, preserving magnitude. legacyName is
// non-empty for subcategory conversions, whose transactions may be linked by
// name only.
func (c *coordinator) retypeCascade(ctx context.Context, id uuid.UUID, legacyName string, newType model.CategoryType) error {
	txns, err := c.transactions.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("retype cascade: fetch transactions: %w", err)
	}

	var errs []error
	flipped := 0
	for _, txn := range txns {
		linked := txn.CategoryID == id
		if !linked && legacyName != "" {
			linked = strings.EqualFold(txn.CategoryName, legacyName)
		}
		if !linked {
			continue
		}

		want := model.SignedAmount(txn.Amount, newType)
		if txn.Amount.Equal(want) {
			continue
		}
		txn.Amount = want
		if err := c.transactions.Update(ctx, txn); err != nil {
			errs = append(errs, fmt.Errorf("retype cascade: transaction %s: %w", txn.ID, err))
			continue
		}
		flipped++
	}

	slog.Debug("retype cascade complete", "category_id", id, "new_type", newType, "flipped", flipped)
	return errors.Join(errs...)
}

// repairOrphans redirects every transaction whose category id resolves to no
// active record. The target sentinel is inferred from the amount sign, which
// is left untouched. Running the pass twice produces no changes the second
// time.
func (c *coordinator) repairOrphans(ctx context.Context, resolves func(uuid.UUID) bool, sentinelFor func(model.CategoryType) model.Category) (int, error) {
	txns, err := c.transactions.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphan repair: fetch transactions: %w", err)
	}

	var errs []error
	repaired := 0
	for _, txn := range txns {
		if txn.CategoryID != uuid.Nil && resolves(txn.CategoryID) {
			continue
		}

		sentinel := sentinelFor(txn.Direction())
		txn.CategoryID = sentinel.ID
		txn.CategoryName = sentinel.Name
		if err := c.transactions.Update(ctx, txn); err != nil {
			errs = append(errs, fmt.Errorf("orphan repair: transaction %s: %w", txn.ID, err))
			continue
		}
		repaired++
	}

	if repaired > 0 {
		slog.Info("repaired orphaned transactions", "count", repaired)
	}
	return repaired, errors.Join(errs...)
}

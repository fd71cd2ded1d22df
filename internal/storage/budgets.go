package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyfin/tally/internal/model"
)

// BudgetStore adapts the shared SQLite database to the budget collaborator
// interface. Transactions and budgets share one SQLiteStorage, so the budget
// methods live on a named view to keep the two FetchAll contracts apart.
type BudgetStore struct {
	s *SQLiteStorage
}

// Budgets returns the budget store view over this database.
func (s *SQLiteStorage) Budgets() *BudgetStore {
	return &BudgetStore{s: s}
}

// FetchAll returns every stored budget.
func (b *BudgetStore) FetchAll(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, category_id, category_name, amount, period, created_at, updated_at
		FROM budgets
		ORDER BY category_name, id`

	rows, err := b.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		budget, scanErr := scanBudget(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		budgets = append(budgets, budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	slog.Debug("retrieved budgets", "count", len(budgets))
	return budgets, nil
}

// Update rewrites a single budget in place.
func (b *BudgetStore) Update(ctx context.Context, budget model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(&budget); err != nil {
		return err
	}

	query := `
		UPDATE budgets
		SET category_id = ?, category_name = ?, amount = ?, period = ?, updated_at = ?
		WHERE id = ?`

	result, err := b.s.db.ExecContext(ctx, query,
		budget.CategoryID.String(), budget.CategoryName,
		budget.Amount.String(), budget.Period, time.Now(),
		budget.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: budget %s", ErrRecordNotFound, budget.ID)
	}

	return nil
}

// SaveBudget inserts a new budget.
func (b *BudgetStore) SaveBudget(ctx context.Context, budget model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(&budget); err != nil {
		return err
	}

	now := time.Now()
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = now
	}
	if budget.Period == "" {
		budget.Period = "monthly"
	}

	query := `
		INSERT INTO budgets (id, category_id, category_name, amount, period, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := b.s.db.ExecContext(ctx, query,
		budget.ID.String(), budget.CategoryID.String(), budget.CategoryName,
		budget.Amount.String(), budget.Period, budget.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	slog.Debug("saved budget", "id", budget.ID, "category", budget.CategoryName)
	return nil
}

func scanBudget(row rowScanner) (model.Budget, error) {
	var (
		budget         model.Budget
		id, categoryID string
		amount         string
	)

	err := row.Scan(&id, &categoryID, &budget.CategoryName, &amount, &budget.Period, &budget.CreatedAt, &budget.UpdatedAt)
	if err == sql.ErrNoRows {
		return budget, err
	}
	if err != nil {
		return budget, fmt.Errorf("failed to scan budget: %w", err)
	}

	budget.ID, err = uuid.Parse(id)
	if err != nil {
		return budget, fmt.Errorf("invalid budget id %q: %w", id, err)
	}
	budget.CategoryID, err = uuid.Parse(categoryID)
	if err != nil {
		return budget, fmt.Errorf("invalid category id %q on budget %s: %w", categoryID, id, err)
	}
	budget.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return budget, fmt.Errorf("invalid amount %q on budget %s: %w", amount, id, err)
	}

	return budget, nil
}

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

// FetchAll returns every stored transaction ordered by date.
func (s *SQLiteStorage) FetchAll(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, date, merchant, note, category_id, category_name, amount, created_at
		FROM transactions
		ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// Update rewrites a single transaction in place.
func (s *SQLiteStorage) Update(ctx context.Context, txn model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(&txn); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET date = ?, merchant = ?, note = ?, category_id = ?, category_name = ?, amount = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		txn.Date, txn.Merchant, txn.Note,
		txn.CategoryID.String(), txn.CategoryName, txn.Amount.String(),
		txn.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", ErrRecordNotFound, txn.ID)
	}

	return nil
}

// SaveTransaction inserts a new transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(&txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transactions (id, date, merchant, note, category_id, category_name, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID.String(), txn.Date, txn.Merchant, txn.Note,
		txn.CategoryID.String(), txn.CategoryName, txn.Amount.String(), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Debug("saved transaction", "id", txn.ID, "merchant", txn.Merchant)
	return nil
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, date, merchant, note, category_id, category_name, amount, created_at
		FROM transactions
		WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id.String())
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: transaction %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn            model.Transaction
		id, categoryID string
		note           sql.NullString
		amount         string
	)

	err := row.Scan(&id, &txn.Date, &txn.Merchant, &note, &categoryID, &txn.CategoryName, &amount, &txn.CreatedAt)
	if err == sql.ErrNoRows {
		return txn, err
	}
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.ID, err = uuid.Parse(id)
	if err != nil {
		return txn, fmt.Errorf("invalid transaction id %q: %w", id, err)
	}
	txn.CategoryID, err = uuid.Parse(categoryID)
	if err != nil {
		return txn, fmt.Errorf("invalid category id %q on transaction %s: %w", categoryID, id, err)
	}
	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return txn, fmt.Errorf("invalid amount %q on transaction %s: %w", amount, id, err)
	}
	txn.Note = note.String

	return txn, nil
}

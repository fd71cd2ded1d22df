package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfin/tally/internal/model"
)

func testTransaction(date time.Time, amount string) model.Transaction {
	return model.Transaction{
		ID:           uuid.New(),
		Date:         date,
		Merchant:     "COFFEE ROASTERS",
		Note:         "flat white",
		CategoryID:   uuid.New(),
		CategoryName: "Food & Drink",
		Amount:       decimal.RequireFromString(amount),
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	txn := testTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "-4.80")
	require.NoError(t, store.SaveTransaction(ctx, txn))

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, txn.Merchant, got.Merchant)
	assert.Equal(t, txn.Note, got.Note)
	assert.Equal(t, txn.CategoryID, got.CategoryID)
	assert.Equal(t, txn.CategoryName, got.CategoryName)
	assert.True(t, got.Amount.Equal(txn.Amount), "amount %s != %s", got.Amount, txn.Amount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestFetchAllOrdersByDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	later := testTransaction(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "-1")
	earlier := testTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "-2")
	require.NoError(t, store.SaveTransaction(ctx, later))
	require.NoError(t, store.SaveTransaction(ctx, earlier))

	txns, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, earlier.ID, txns[0].ID)
	assert.Equal(t, later.ID, txns[1].ID)
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	txn := testTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "-10.00")
	require.NoError(t, store.SaveTransaction(ctx, txn))

	txn.CategoryID = uuid.New()
	txn.CategoryName = "Shopping"
	txn.Amount = decimal.RequireFromString("-12.34")
	require.NoError(t, store.Update(ctx, txn))

	got, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got.CategoryName)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("-12.34")))
}

func TestUpdateMissingTransaction(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	txn := testTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "-1")
	err := store.Update(ctx, txn)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetMissingTransaction(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	_, err := store.GetTransactionByID(ctx, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTransactionValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	t.Run("missing id", func(t *testing.T) {
		txn := testTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "-1")
		txn.ID = uuid.Nil
		err := store.SaveTransaction(ctx, txn)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("missing date", func(t *testing.T) {
		txn := testTransaction(time.Time{}, "-1")
		txn.Date = time.Time{}
		err := store.SaveTransaction(ctx, txn)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

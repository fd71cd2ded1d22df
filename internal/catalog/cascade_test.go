package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfin/tally/internal/model"
)

type fakeTxnStore struct {
	txns    []model.Transaction
	failID  uuid.UUID
	updates int
}

func (f *fakeTxnStore) FetchAll(_ context.Context) ([]model.Transaction, error) {
	return append([]model.Transaction(nil), f.txns...), nil
}

func (f *fakeTxnStore) Update(_ context.Context, txn model.Transaction) error {
	if txn.ID == f.failID {
		return errors.New("disk full")
	}
	for i := range f.txns {
		if f.txns[i].ID == txn.ID {
			f.txns[i] = txn
			f.updates++
			return nil
		}
	}
	return errors.New("transaction not found")
}

func (f *fakeTxnStore) byID(t *testing.T, id uuid.UUID) model.Transaction {
	t.Helper()
	for _, txn := range f.txns {
		if txn.ID == id {
			return txn
		}
	}
	t.Fatalf("transaction %s not in fake store", id)
	return model.Transaction{}
}

type fakeBudgetStore struct {
	budgets []model.Budget
	updates int
}

func (f *fakeBudgetStore) FetchAll(_ context.Context) ([]model.Budget, error) {
	return append([]model.Budget(nil), f.budgets...), nil
}

func (f *fakeBudgetStore) Update(_ context.Context, budget model.Budget) error {
	for i := range f.budgets {
		if f.budgets[i].ID == budget.ID {
			f.budgets[i] = budget
			f.updates++
			return nil
		}
	}
	return errors.New("budget not found")
}

func testCategory(name string, catType model.CategoryType) model.Category {
	return model.Category{
		ID:        uuid.New(),
		Name:      name,
		Type:      catType,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testTxn(cat model.Category, amount string) model.Transaction {
	return model.Transaction{
		ID:           uuid.New(),
		Date:         time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Merchant:     "MERCHANT",
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Amount:       decimal.RequireFromString(amount),
	}
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()

	dining := testCategory("Dining", model.CategoryTypeExpense)
	sentinel := testCategory(SentinelExpenseName, model.CategoryTypeExpense)
	other := testCategory("Other", model.CategoryTypeExpense)

	byID := testTxn(dining, "-12.50")
	byName := testTxn(other, "-8.00")
	byName.CategoryID = uuid.New() // stale id, linked by name only
	byName.CategoryName = "dining"
	unrelated := testTxn(other, "-3.00")

	linkedBudget := model.Budget{ID: uuid.New(), CategoryID: dining.ID, CategoryName: dining.Name, Amount: decimal.RequireFromString("200")}
	otherBudget := model.Budget{ID: uuid.New(), CategoryID: other.ID, CategoryName: other.Name, Amount: decimal.RequireFromString("50")}

	txns := &fakeTxnStore{txns: []model.Transaction{byID, byName, unrelated}}
	budgets := &fakeBudgetStore{budgets: []model.Budget{linkedBudget, otherBudget}}
	c := newCoordinator(txns, budgets)

	require.NoError(t, c.deleteCascade(ctx, dining, sentinel))

	for _, id := range []uuid.UUID{byID.ID, byName.ID} {
		got := txns.byID(t, id)
		assert.Equal(t, sentinel.ID, got.CategoryID)
		assert.Equal(t, sentinel.Name, got.CategoryName)
	}
	assert.True(t, txns.byID(t, byID.ID).Amount.Equal(byID.Amount), "amounts are never touched by delete")
	assert.Equal(t, other.ID, txns.byID(t, unrelated.ID).CategoryID)

	assert.Equal(t, sentinel.ID, budgets.budgets[0].CategoryID)
	assert.Equal(t, other.ID, budgets.budgets[1].CategoryID)
}

func TestDeleteCascadeBestEffort(t *testing.T) {
	ctx := context.Background()

	dining := testCategory("Dining", model.CategoryTypeExpense)
	sentinel := testCategory(SentinelExpenseName, model.CategoryTypeExpense)

	bad := testTxn(dining, "-5.00")
	good := testTxn(dining, "-7.00")
	linkedBudget := model.Budget{ID: uuid.New(), CategoryID: dining.ID, CategoryName: dining.Name, Amount: decimal.RequireFromString("100")}

	txns := &fakeTxnStore{txns: []model.Transaction{bad, good}, failID: bad.ID}
	budgets := &fakeBudgetStore{budgets: []model.Budget{linkedBudget}}
	c := newCoordinator(txns, budgets)

	err := c.deleteCascade(ctx, dining, sentinel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad.ID.String())

	// The failure did not stop the rest of the scan.
	assert.Equal(t, sentinel.ID, txns.byID(t, good.ID).CategoryID)
	assert.Equal(t, sentinel.ID, budgets.budgets[0].CategoryID)
	assert.Equal(t, dining.ID, txns.byID(t, bad.ID).CategoryID)
}

func TestRenameCascade(t *testing.T) {
	ctx := context.Background()

	travel := testCategory("Travel", model.CategoryTypeExpense)

	linked := model.Budget{ID: uuid.New(), CategoryID: travel.ID, CategoryName: "Travel", Amount: decimal.RequireFromString("300")}
	current := model.Budget{ID: uuid.New(), CategoryID: travel.ID, CategoryName: "Trips", Amount: decimal.RequireFromString("100")}
	nameOnly := model.Budget{ID: uuid.New(), CategoryID: uuid.New(), CategoryName: "Travel", Amount: decimal.RequireFromString("80")}

	budgets := &fakeBudgetStore{budgets: []model.Budget{linked, current, nameOnly}}
	c := newCoordinator(&fakeTxnStore{}, budgets)

	require.NoError(t, c.renameCascade(ctx, travel.ID, "Trips"))

	assert.Equal(t, "Trips", budgets.budgets[0].CategoryName)
	assert.Equal(t, "Travel", budgets.budgets[2].CategoryName, "name-only links are not rewritten")
	assert.Equal(t, 1, budgets.updates, "already-correct budgets are skipped")
}

func TestRetypeCascade(t *testing.T) {
	ctx := context.Background()

	gig := testCategory("Side Gig", model.CategoryTypeExpense)

	t.Run("flips signs and preserves magnitude", func(t *testing.T) {
		linked := testTxn(gig, "-42.10")
		correct := testTxn(gig, "13.00")
		unrelated := testTxn(testCategory("Other", model.CategoryTypeExpense), "-9.99")

		txns := &fakeTxnStore{txns: []model.Transaction{linked, correct, unrelated}}
		c := newCoordinator(txns, &fakeBudgetStore{})

		require.NoError(t, c.retypeCascade(ctx, gig.ID, "", model.CategoryTypeIncome))

		assert.True(t, txns.byID(t, linked.ID).Amount.Equal(decimal.RequireFromString("42.10")))
		assert.True(t, txns.byID(t, unrelated.ID).Amount.Equal(decimal.RequireFromString("-9.99")))
		assert.Equal(t, 1, txns.updates, "already-correct signs are skipped")
	})

	t.Run("round trip restores the original amounts", func(t *testing.T) {
		linked := testTxn(gig, "-42.10")
		txns := &fakeTxnStore{txns: []model.Transaction{linked}}
		c := newCoordinator(txns, &fakeBudgetStore{})

		require.NoError(t, c.retypeCascade(ctx, gig.ID, "", model.CategoryTypeIncome))
		require.NoError(t, c.retypeCascade(ctx, gig.ID, "", model.CategoryTypeExpense))

		assert.True(t, txns.byID(t, linked.ID).Amount.Equal(linked.Amount))
	})

	t.Run("legacy name links flip too", func(t *testing.T) {
		stale := testTxn(gig, "-10.00")
		stale.CategoryID = uuid.New()
		stale.CategoryName = "side gig"

		txns := &fakeTxnStore{txns: []model.Transaction{stale}}
		c := newCoordinator(txns, &fakeBudgetStore{})

		require.NoError(t, c.retypeCascade(ctx, gig.ID, "Side Gig", model.CategoryTypeIncome))

		assert.True(t, txns.byID(t, stale.ID).Amount.Equal(decimal.RequireFromString("10.00")))
	})
}

func TestRepairOrphans(t *testing.T) {
	ctx := context.Background()

	salary := testCategory("Salary", model.CategoryTypeIncome)
	incomeSentinel := model.Category{ID: model.SentinelIncomeID, Name: SentinelIncomeName, Type: model.CategoryTypeIncome}
	expenseSentinel := model.Category{ID: model.SentinelExpenseID, Name: SentinelExpenseName, Type: model.CategoryTypeExpense}

	valid := testTxn(salary, "2500.00")
	nilRef := testTxn(salary, "100.00")
	nilRef.CategoryID = uuid.Nil
	dangling := testTxn(salary, "-55.00")
	dangling.CategoryID = uuid.New()

	known := map[uuid.UUID]bool{
		salary.ID:          true,
		incomeSentinel.ID:  true,
		expenseSentinel.ID: true,
	}
	resolves := func(id uuid.UUID) bool { return known[id] }
	sentinelFor := func(catType model.CategoryType) model.Category {
		if catType == model.CategoryTypeIncome {
			return incomeSentinel
		}
		return expenseSentinel
	}

	txns := &fakeTxnStore{txns: []model.Transaction{valid, nilRef, dangling}}
	c := newCoordinator(txns, &fakeBudgetStore{})

	repaired, err := c.repairOrphans(ctx, resolves, sentinelFor)
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)

	assert.Equal(t, salary.ID, txns.byID(t, valid.ID).CategoryID)
	assert.Equal(t, incomeSentinel.ID, txns.byID(t, nilRef.ID).CategoryID, "positive amount goes to the income sentinel")
	assert.Equal(t, expenseSentinel.ID, txns.byID(t, dangling.ID).CategoryID, "negative amount goes to the expense sentinel")
	assert.True(t, txns.byID(t, dangling.ID).Amount.Equal(dangling.Amount))

	repaired, err = c.repairOrphans(ctx, resolves, sentinelFor)
	require.NoError(t, err)
	assert.Zero(t, repaired, "a second pass changes nothing")
}

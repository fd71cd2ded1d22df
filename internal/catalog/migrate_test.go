package catalog_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyfin/tally/internal/catalog"
	"github.com/tallyfin/tally/internal/model"
	"github.com/tallyfin/tally/internal/testutil"
)

func newCatalog(t *testing.T, store *testutil.TestCatalog) *catalog.Service {
	t.Helper()
	svc, err := catalog.New(context.Background(), store.Store, store.Store, store.Budgets)
	require.NoError(t, err)
	return svc
}

func TestBootstrapOnFirstRun(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	for _, id := range []uuid.UUID{model.SentinelIncomeID, model.SentinelExpenseID} {
		sentinel, err := tc.Catalog.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, sentinel.IsSentinel())
		assert.True(t, sentinel.IsBuiltIn)
	}

	for _, name := range []string{"Salary", "Food & Drink", "Housing", "Transport"} {
		_, err := tc.Catalog.FindByName(ctx, name)
		assert.NoError(t, err, "built-in %q missing after bootstrap", name)
	}

	ok, err := tc.Store.Has(ctx, "categories.v2")
	require.NoError(t, err)
	assert.True(t, ok, "bootstrap must persist the seeded catalog")
}

func TestCatalogSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	added, err := tc.Catalog.Add(ctx, "Custom", "🔧", "", "")
	require.NoError(t, err)

	reopened := newCatalog(t, tc)
	found, err := reopened.FindByName(ctx, "Custom")
	require.NoError(t, err)
	assert.Equal(t, added.ID, found.ID)
}

func TestDeletedStaysDeletedAcrossRestart(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	_, err := tc.Catalog.Add(ctx, "Ephemeral", "", "", "")
	require.NoError(t, err)
	require.NoError(t, tc.Catalog.Delete(ctx, "Ephemeral"))

	reopened := newCatalog(t, tc)
	_, err = reopened.FindByName(ctx, "Ephemeral")
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}

func TestLegacyStorageDiscarded(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	// A user-created category in the current format, about to be lost to the
	// one-way legacy migration.
	_, err := tc.Catalog.Add(ctx, "Doomed", "", "", "")
	require.NoError(t, err)

	legacy, err := json.Marshal(map[string][]string{"Food": {"Groceries"}})
	require.NoError(t, err)
	require.NoError(t, tc.Store.Set(ctx, "categories.legacy", legacy))

	reopened := newCatalog(t, tc)

	_, err = reopened.FindByName(ctx, "Doomed")
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound, "legacy migration re-seeds built-ins only")

	_, err = reopened.FindByName(ctx, "Salary")
	assert.NoError(t, err)

	ok, err := tc.Store.Has(ctx, "categories.legacy")
	require.NoError(t, err)
	assert.False(t, ok, "legacy key must be deleted after migration")
}

func TestMissingSentinelsResetCatalog(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t)

	stray := model.Category{
		ID:        uuid.New(),
		Name:      "Stray",
		Type:      model.CategoryTypeExpense,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	doc, err := json.Marshal(struct {
		Categories []model.Category `json:"categories"`
		Version    int              `json:"version"`
	}{Categories: []model.Category{stray}, Version: 2})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "categories.v2", doc))

	svc, err := catalog.New(ctx, store, store, store.Budgets())
	require.NoError(t, err)

	_, err = svc.FindByName(ctx, "Stray")
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound, "a catalog without sentinels is reset wholesale")

	for _, id := range []uuid.UUID{model.SentinelIncomeID, model.SentinelExpenseID} {
		_, err := svc.FindByID(ctx, id)
		assert.NoError(t, err)
	}
}

func TestResetReseedsBuiltins(t *testing.T) {
	ctx := context.Background()
	tc := testutil.SetupTestCatalog(t)

	_, err := tc.Catalog.Add(ctx, "Custom", "", "", "")
	require.NoError(t, err)

	require.NoError(t, tc.Catalog.Reset(ctx))

	_, err = tc.Catalog.FindByName(ctx, "Custom")
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	_, err = tc.Catalog.FindByName(ctx, "Salary")
	assert.NoError(t, err)
}

// Package testutil provides test utilities: in-memory databases, a wired
// category catalog, and fixture builders for transactions and budgets.
package testutil

import (
	"context"
	"testing"

	"github.com/tallyfin/tally/internal/catalog"
	"github.com/tallyfin/tally/internal/storage"
)

// SetupTestDB creates a new in-memory SQLite database with migrations
// applied and cleanup registered.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// TestCatalog bundles a catalog service with the stores backing it.
type TestCatalog struct {
	Catalog *catalog.Service
	Store   *storage.SQLiteStorage
	Budgets *storage.BudgetStore
}

// SetupTestCatalog creates an in-memory database and a catalog service wired
// to its transaction and budget stores. The catalog bootstraps the built-in
// category set.
func SetupTestCatalog(t *testing.T, opts ...catalog.Option) *TestCatalog {
	t.Helper()

	store := SetupTestDB(t)
	budgets := store.Budgets()

	svc, err := catalog.New(context.Background(), store, store, budgets, opts...)
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}

	return &TestCatalog{
		Catalog: svc,
		Store:   store,
		Budgets: budgets,
	}
}

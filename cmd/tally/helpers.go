package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/tallyfin/tally/internal/catalog"
	"github.com/tallyfin/tally/internal/config"
	"github.com/tallyfin/tally/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tally/tally.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initCatalog opens storage and constructs the category catalog wired to the
// transaction and budget stores. The caller owns closing the returned
// storage.
func initCatalog(ctx context.Context) (*catalog.Service, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := catalog.New(ctx, store, store, store.Budgets())
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to initialize category catalog: %w", err)
	}

	return svc, store, nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/tagwise/tagwise/internal/config"
	"github.com/tagwise/tagwise/internal/engine"
	"github.com/tagwise/tagwise/internal/service"
	"github.com/tagwise/tagwise/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tagwise/tagwise.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine opens storage and wraps it in the tagging engine. The returned
// cleanup closes the database.
func initEngine(ctx context.Context) (*engine.Engine, service.Storage, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { _ = store.Close() }
	return engine.New(store), store, cleanup, nil
}

// confirm prompts the user for a yes/no answer unless force is set.
func confirm(prompt string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(os.Stdout, "%s [y/N]: ", prompt)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	return response == "y" || response == "Y"
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zeronote/zeronote/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	statusOnly, _ := cmd.Flags().GetBool("status")

	dbPath, err := databasePath()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", statusOnly)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if statusOnly {
		version, versionErr := store.SchemaVersion(cmd.Context())
		if versionErr != nil {
			return fmt.Errorf("failed to read schema version: %w", versionErr)
		}
		fmt.Printf("Schema version: %d (latest: %d)\n", version, storage.ExpectedSchemaVersion)
		return nil
	}

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Database migration complete", "version", storage.ExpectedSchemaVersion)
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/llm"
	"github.com/zeronote/zeronote/internal/storage"
)

func databasePath() (string, error) {
	if dbPath := viper.GetString("database.path"); dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "zeronote", "zeronote.db"), nil
}

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func buildClassifier(logger *slog.Logger) (*llm.Classifier, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	return llm.NewClassifier(cfg, logger)
}

func buildService(ctx context.Context, logger *slog.Logger) (*ledger.Service, *storage.SQLiteStorage, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	classifier, err := buildClassifier(logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return ledger.NewService(store, classifier, logger), store, nil
}

func parseDate(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}

// Package storage persists the two configuration values that survive
// restarts: the last-connected sheet URL and the last-configured webhook
// URL. It is an explicit store object handed to the refresher at
// construction, never ambient process state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	keySheetURL   = "sheet_url"
	keyWebhookURL = "webhook_url"
)

// Settings holds the persisted connection configuration. Zero values mean
// "not configured".
type Settings struct {
	SheetURL   string
	WebhookURL string
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(dbPath string) (*SettingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SettingsStore{db: db}, nil
}

func (s *SettingsStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the persisted connection settings. Missing keys are returned as
// empty strings, not errors.
func (s *SettingsStore) Load(ctx context.Context) (Settings, error) {
	var out Settings
	var err error
	if out.SheetURL, err = s.get(ctx, keySheetURL); err != nil {
		return Settings{}, err
	}
	if out.WebhookURL, err = s.get(ctx, keyWebhookURL); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// SaveConnection persists both values atomically.
func (s *SettingsStore) SaveConnection(ctx context.Context, settings Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		keySheetURL:   settings.SheetURL,
		keyWebhookURL: settings.WebhookURL,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, value); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Connection settings saved",
		"has_sheet_url", settings.SheetURL != "",
		"has_webhook_url", settings.WebhookURL != "")
	return nil
}

// Clear removes the persisted connection (disconnect).
func (s *SettingsStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key IN (?, ?)`, keySheetURL, keyWebhookURL); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

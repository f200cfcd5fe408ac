package settings

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"costmanager/internal/storage"
	"costmanager/internal/storage/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const schemaVersion uint = 1

// SQLiteStore persists settings in their own SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create settings directory: %v", storage.ErrStorageUnavailable, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open settings database: %v", storage.ErrStorageUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping settings database: %v", storage.ErrStorageUnavailable, err)
	}
	if err := sqlite.MigrateFS(dbPath, migrationsFS, "migrations", schemaVersion, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: settings migrations: %v", storage.ErrStorageUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: select setting: %v", storage.ErrReadFailed, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: upsert setting: %v", storage.ErrWriteFailed, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

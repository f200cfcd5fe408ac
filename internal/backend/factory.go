package backend

import (
	"context"
	"errors"
	"fmt"

	"costmanager/internal/log"
	"costmanager/internal/settings"
	"costmanager/internal/storage"
	"costmanager/internal/storage/memory"
	"costmanager/internal/storage/postgres"
	"costmanager/internal/storage/sqlite"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open opens the cost store and, for persistent backends, the settings
// database next to it. Failures wrap storage.ErrStorageUnavailable.
func (f *DefaultFactory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{
			Costs:    memory.New(),
			Settings: settings.NewMemoryStore(),
			Cleanup:  func() error { return nil },
		}, nil
	case SQLiteBackend:
		repo, err := sqlite.Open(ctx, cfg.SQLiteDBPath, cfg.SQLiteSchemaVersion)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cost store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath, "schema_version", cfg.SQLiteSchemaVersion)
		return f.withSettings(ctx, cfg, repo)
	case PostgresBackend:
		repo, err := postgres.Open(ctx, cfg.PostgresURL, postgres.LatestSchemaVersion)
		if err != nil {
			return nil, fmt.Errorf("open postgres cost store: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return f.withSettings(ctx, cfg, repo)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) withSettings(ctx context.Context, cfg Config, costs storage.CostStore) (*Result, error) {
	st, err := settings.OpenSQLite(ctx, cfg.SettingsDBPath)
	if err != nil {
		costs.Close()
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	f.logger.Info("Initialized settings store", "db_path", cfg.SettingsDBPath)

	return &Result{
		Costs:    costs,
		Settings: st,
		Cleanup: func() error {
			return errors.Join(costs.Close(), st.Close())
		},
	}, nil
}

// Package backend opens the cost store and settings store selected by
// configuration.
package backend

import (
	"context"
	"slices"

	"costmanager/internal/settings"
	"costmanager/internal/storage"
)

// CleanupFunc releases the resources of a Result.
type CleanupFunc func() error

// Result holds the opened stores.
type Result struct {
	Costs    storage.CostStore
	Settings settings.Store
	Cleanup  CleanupFunc
}

// Factory opens stores for a Config.
type Factory interface {
	Open(ctx context.Context, cfg Config) (*Result, error)
}

// Config holds what the factory needs to open the stores.
type Config struct {
	Type BackendType

	SQLiteDBPath        string
	SQLiteSchemaVersion uint
	SettingsDBPath      string

	PostgresURL string
}

// BackendType names a cost store implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}

package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/config"
	"costmanager/internal/core"
	"costmanager/internal/settings"
	"costmanager/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sqlite",
		SQLiteDBPath:        "./data/costsdb.db",
		SQLiteSchemaVersion: 1,
		SettingsDBPath:      "./data/settings.db",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "./data/settings.db", cfg.SettingsDBPath)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: "sheets"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend, SQLiteSchemaVersion: 1, SettingsDBPath: "s.db"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend, SQLiteDBPath: "c.db", SQLiteSchemaVersion: 1}.Validate())
	assert.Error(t, Config{Type: PostgresBackend, SettingsDBPath: "s.db"}.Validate())
	assert.Equal(t, []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend}, GetBackendTypes())
	assert.ErrorContains(t, Config{Type: "sheets"}.Validate(), "must be one of [memory sqlite postgres]")
}

func TestOpenMemory(t *testing.T) {
	res, err := NewFactory(nil).Open(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Cleanup()

	_, err = res.Costs.AddCost(context.Background(), core.NewCost{Sum: 1, Currency: core.USD, Category: "c", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, res.Settings.Set(context.Background(), settings.KeyExchangeURL, "http://x"))
}

func TestOpenSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Type:                SQLiteBackend,
		SQLiteDBPath:        filepath.Join(dir, "costsdb.db"),
		SQLiteSchemaVersion: 1,
		SettingsDBPath:      filepath.Join(dir, "settings.db"),
	}
	ctx := context.Background()

	res, err := NewFactory(nil).Open(ctx, cfg)
	require.NoError(t, err)
	added, err := res.Costs.AddCost(ctx, core.NewCost{Sum: 2.5, Currency: core.EUR, Category: "Food", Description: "bread"})
	require.NoError(t, err)
	require.NoError(t, res.Settings.Set(ctx, settings.KeyExchangeURL, "https://rates.example.com"))
	require.NoError(t, res.Cleanup())

	_, err = os.Stat(cfg.SettingsDBPath)
	require.NoError(t, err, "settings live in their own database file")

	res, err = NewFactory(nil).Open(ctx, cfg)
	require.NoError(t, err)
	defer res.Cleanup()

	all, err := res.Costs.GetAllCosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, added.ID, all[0].ID)

	v, ok, err := res.Settings.Get(ctx, settings.KeyExchangeURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://rates.example.com", v)
}

func TestOpenSQLiteUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewFactory(nil).Open(context.Background(), Config{
		Type:                SQLiteBackend,
		SQLiteDBPath:        filepath.Join(blocker, "costsdb.db"),
		SQLiteSchemaVersion: 1,
		SettingsDBPath:      filepath.Join(dir, "settings.db"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrStorageUnavailable))
}

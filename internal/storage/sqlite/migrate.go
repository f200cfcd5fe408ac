package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// LatestSchemaVersion is the highest migration shipped with the binary.
const LatestSchemaVersion uint = 1

// RunMigrations upgrades the costs schema at dbPath to version.
func RunMigrations(dbPath string, version uint) error {
	return MigrateFS(dbPath, migrationsFS, "migrations", version, LatestSchemaVersion)
}

// MigrateFS applies the migrations found in dir of fsys to the database at
// dbPath, up to version. Asking for a version lower than the one already
// applied is an error; databases are never downgraded.
func MigrateFS(dbPath string, fsys fs.FS, dir string, version, latest uint) error {
	if version == 0 || version > latest {
		return fmt.Errorf("unsupported schema version %d (latest %d)", version, latest)
	}

	// Separate connection so the migrator can close it without touching the main pool
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", current)
	}
	if err == nil && current > version {
		return fmt.Errorf("schema version %d is newer than requested %d", current, version)
	}

	if err := m.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

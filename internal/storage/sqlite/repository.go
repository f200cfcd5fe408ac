package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

// Repository is the SQLite cost store. It owns its database handle for the
// lifetime of the process.
type Repository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// Open opens (or creates) the costs database at dbPath and upgrades its
// schema to version. Any failure is reported as storage.ErrStorageUnavailable.
func Open(ctx context.Context, dbPath string, version uint) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create db directory: %v", storage.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", storage.ErrStorageUnavailable, err)
	}
	// SQLite allows a single writer; one connection serializes transactions.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", storage.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(dbPath, version); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	slog.InfoContext(ctx, "Opened SQLite cost store",
		"path", dbPath,
		"schema_version", version,
		"collection", storage.CostsCollection)

	return &Repository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddCost implements storage.CostWriter
func (r *Repository) AddCost(ctx context.Context, n core.NewCost) (core.Cost, error) {
	c, err := storage.NewEntry(n, r.now())
	if err != nil {
		return core.Cost{}, err
	}

	err = r.queries.CreateCost(ctx, CreateCostParams{
		ID:          c.ID,
		Sum:         c.Sum,
		Currency:    string(c.Currency),
		Category:    c.Category,
		Description: c.Description,
		Date:        c.Date,
	})
	if err != nil {
		return core.Cost{}, fmt.Errorf("%w: create cost: %v", storage.ErrWriteFailed, err)
	}

	slog.DebugContext(ctx, "Cost saved to SQLite",
		"id", c.ID,
		"sum", c.Sum,
		"currency", c.Currency,
		"category", c.Category)

	return c, nil
}

// GetAllCosts implements storage.CostReader
func (r *Repository) GetAllCosts(ctx context.Context) ([]core.Cost, error) {
	rows, err := r.queries.ListCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list costs: %v", storage.ErrReadFailed, err)
	}

	costs := make([]core.Cost, len(rows))
	for i, row := range rows {
		costs[i] = core.Cost{
			ID:          row.ID,
			Sum:         row.Sum,
			Currency:    core.Currency(row.Currency),
			Category:    row.Category,
			Description: row.Description,
			Date:        row.Date,
		}
	}
	return costs, nil
}

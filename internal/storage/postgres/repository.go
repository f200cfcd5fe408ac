package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

// Repository is the PostgreSQL cost store.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to dsn and upgrades the schema to version. Failures are
// reported as storage.ErrStorageUnavailable.
func Open(ctx context.Context, dsn string, version uint) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %v", storage.ErrStorageUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping database: %v", storage.ErrStorageUnavailable, err)
	}
	if err := RunMigrations(dsn, version); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	slog.InfoContext(ctx, "Opened PostgreSQL cost store", "schema_version", version)
	return &Repository{pool: pool, now: time.Now}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const insertCost = `INSERT INTO costs (id, sum, currency, category, description, date)
VALUES ($1, $2, $3, $4, $5, $6)`

// AddCost implements storage.CostWriter
func (r *Repository) AddCost(ctx context.Context, n core.NewCost) (core.Cost, error) {
	c, err := storage.NewEntry(n, r.now())
	if err != nil {
		return core.Cost{}, err
	}
	// Postgres keeps microseconds; truncate so the returned entry matches later reads.
	c.Date = c.Date.Truncate(time.Microsecond)

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return core.Cost{}, fmt.Errorf("%w: parse id: %v", storage.ErrWriteFailed, err)
	}

	_, err = r.pool.Exec(ctx, insertCost, id, c.Sum, string(c.Currency), c.Category, c.Description, c.Date)
	if err != nil {
		return core.Cost{}, fmt.Errorf("%w: insert cost: %v", storage.ErrWriteFailed, err)
	}
	return c, nil
}

const selectCosts = `SELECT id::text, sum, currency, category, description, date
FROM costs
ORDER BY date, id`

// GetAllCosts implements storage.CostReader
func (r *Repository) GetAllCosts(ctx context.Context) ([]core.Cost, error) {
	rows, err := r.pool.Query(ctx, selectCosts)
	if err != nil {
		return nil, fmt.Errorf("%w: query costs: %v", storage.ErrReadFailed, err)
	}
	costs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Cost, error) {
		var (
			c        core.Cost
			currency string
		)
		if err := row.Scan(&c.ID, &c.Sum, &currency, &c.Category, &c.Description, &c.Date); err != nil {
			return core.Cost{}, err
		}
		c.Currency = core.Currency(currency)
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan costs: %v", storage.ErrReadFailed, err)
	}
	return costs, nil
}

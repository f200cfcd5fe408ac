package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dateLayout is fixed-width UTC so the date index orders lexicographically.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Cost struct {
	ID          string
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        time.Time
}

const createCost = `INSERT INTO costs (id, sum, currency, category, description, date)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateCostParams struct {
	ID          string
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        time.Time
}

func (q *Queries) CreateCost(ctx context.Context, arg CreateCostParams) error {
	_, err := q.db.ExecContext(ctx, createCost,
		arg.ID,
		arg.Sum,
		arg.Currency,
		arg.Category,
		arg.Description,
		arg.Date.UTC().Format(dateLayout),
	)
	return err
}

const listCosts = `SELECT id, sum, currency, category, description, date
FROM costs
ORDER BY date, id`

func (q *Queries) ListCosts(ctx context.Context) ([]Cost, error) {
	rows, err := q.db.QueryContext(ctx, listCosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Cost
	for rows.Next() {
		var (
			i    Cost
			date string
		)
		if err := rows.Scan(&i.ID, &i.Sum, &i.Currency, &i.Category, &i.Description, &date); err != nil {
			return nil, err
		}
		i.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q for cost %s: %w", date, i.ID, err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

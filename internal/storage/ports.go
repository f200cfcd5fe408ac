package storage

import (
	"context"
	"errors"

	"costmanager/internal/core"
)

// Error taxonomy shared by every cost store implementation.
var (
	// ErrStorageUnavailable means the store could not be opened or migrated.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrWriteFailed means a write transaction was rejected.
	ErrWriteFailed = errors.New("write failed")
	// ErrReadFailed means a read transaction failed.
	ErrReadFailed = errors.New("read failed")
)

// CostsCollection is the name of the single record collection.
const CostsCollection = "costs"

// Ports for cost store adapters.
type (
	CostWriter interface {
		// AddCost assigns ID and Date, persists the entry and returns it.
		AddCost(ctx context.Context, n core.NewCost) (core.Cost, error)
	}

	CostReader interface {
		// GetAllCosts returns every stored entry. Callers must not rely on order.
		GetAllCosts(ctx context.Context) ([]core.Cost, error)
	}

	CostStore interface {
		CostWriter
		CostReader
		Ping(ctx context.Context) error
		Close() error
	}
)

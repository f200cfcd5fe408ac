package memory

import (
	"context"
	"sync"
	"time"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

// Store keeps costs in process memory. Entries are lost on restart.
type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	items []core.Cost
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock returns a Store that stamps entries using now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// AddCost implements storage.CostWriter
func (s *Store) AddCost(_ context.Context, n core.NewCost) (core.Cost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := storage.NewEntry(n, s.now())
	if err != nil {
		return core.Cost{}, err
	}
	s.items = append(s.items, c)
	return c, nil
}

// GetAllCosts implements storage.CostReader
func (s *Store) GetAllCosts(_ context.Context) ([]core.Cost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Cost(nil), s.items...), nil
}

// Seed inserts fully-formed entries, keeping their ID and Date.
func (s *Store) Seed(costs ...core.Cost) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, costs...)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

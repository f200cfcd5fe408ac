package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"costmanager/internal/core"
)

// NewEntry builds the stored form of n with a fresh time-ordered ID and the
// current time as its date.
func NewEntry(n core.NewCost, now time.Time) (core.Cost, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return core.Cost{}, fmt.Errorf("%w: generate id: %v", ErrWriteFailed, err)
	}
	return core.Cost{
		ID:          id.String(),
		Sum:         n.Sum,
		Currency:    n.Currency,
		Category:    n.Category,
		Description: n.Description,
		Date:        now,
	}, nil
}

package worker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/amqp"
	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/services"
	"costmanager/internal/storage"
	"costmanager/internal/storage/memory"
)

type staticRates core.RateTable

func (s staticRates) FetchRates(context.Context) core.RateTable { return core.RateTable(s) }

type brokenReader struct{}

func (brokenReader) GetAllCosts(context.Context) ([]core.Cost, error) {
	return nil, storage.ErrReadFailed
}

func TestHandleCostCreatedLogsTotal(t *testing.T) {
	store := memory.New()
	store.Seed(
		core.Cost{ID: "a", Sum: 100, Currency: core.USD, Category: "Food", Description: "x", Date: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
		core.Cost{ID: "b", Sum: 50, Currency: core.EUR, Category: "Transport", Description: "y", Date: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)},
	)
	reports := services.NewReportService(store, staticRates{"USD": 1, "EUR": 0.9}, time.UTC, nil)

	var buf bytes.Buffer
	n := NewNotifier(reports, core.USD, log.New(log.Config{Output: &buf}))

	err := n.HandleCostCreated(context.Background(), &amqp.CostCreatedMessage{ID: "b", Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Month total refreshed")
	assert.Contains(t, buf.String(), "month=Mar")
	assert.Contains(t, buf.String(), "entries=2")
	assert.Contains(t, buf.String(), "total=$155.56")
}

func TestHandleCostCreatedDropsInvalidMonth(t *testing.T) {
	reports := services.NewReportService(brokenReader{}, staticRates{}, time.UTC, nil)
	n := NewNotifier(reports, core.USD, nil)

	assert.NoError(t, n.HandleCostCreated(context.Background(), &amqp.CostCreatedMessage{ID: "x", Year: 2024, Month: 0}))
}

func TestHandleCostCreatedReturnsStoreErrors(t *testing.T) {
	reports := services.NewReportService(brokenReader{}, staticRates{}, time.UTC, nil)
	n := NewNotifier(reports, core.USD, nil)

	err := n.HandleCostCreated(context.Background(), &amqp.CostCreatedMessage{ID: "x", Year: 2024, Month: 2})
	assert.ErrorIs(t, err, storage.ErrReadFailed)
}

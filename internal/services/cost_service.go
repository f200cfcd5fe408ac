package services

import (
	"context"
	"fmt"
	"time"

	"costmanager/internal/amqp"
	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/storage"
)

// EventPublisher announces stored costs. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishCostCreated(ctx context.Context, msg *amqp.CostCreatedMessage) error
}

// CostService validates and stores costs, then publishes a cost event.
type CostService struct {
	store     storage.CostStore
	publisher EventPublisher
	loc       *time.Location
	logger    *log.Logger
}

// NewCostService wires the service. publisher may be nil when no broker is
// configured; loc decides which month an event is tagged with.
func NewCostService(store storage.CostStore, publisher EventPublisher, loc *time.Location, logger *log.Logger) *CostService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &CostService{
		store:     store,
		publisher: publisher,
		loc:       loc,
		logger:    logger.WithComponent(log.ComponentCosts),
	}
}

// AddCost normalizes and validates n before storing it. Validation errors
// are core.ErrInvalid* sentinels; store failures wrap storage.ErrWriteFailed.
func (s *CostService) AddCost(ctx context.Context, n core.NewCost) (core.Cost, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return core.Cost{}, err
	}

	c, err := s.store.AddCost(ctx, n)
	if err != nil {
		s.logger.LogError(ctx, "Failed to store cost", err, log.OpCreate, nil)
		return core.Cost{}, fmt.Errorf("add cost: %w", err)
	}

	s.logger.InfoContext(ctx, "Cost added",
		log.NewFields().WithCost(c.ID, c.Sum, c.Currency.String(), c.Category).ToSlice()...)

	s.publish(ctx, c)
	return c, nil
}

// publish never fails the add: the cost is already stored.
func (s *CostService) publish(ctx context.Context, c core.Cost) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewCostCreatedMessage(c.ID, c.Date.In(s.loc))
	if err := s.publisher.PublishCostCreated(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish cost event",
			log.FieldCostID, c.ID, log.FieldError, err.Error())
	}
}

// ListCosts returns every stored cost.
func (s *CostService) ListCosts(ctx context.Context) ([]core.Cost, error) {
	costs, err := s.store.GetAllCosts(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Failed to list costs", err, log.OpList, nil)
		return nil, fmt.Errorf("list costs: %w", err)
	}
	return costs, nil
}

// Ping checks the underlying store.
func (s *CostService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

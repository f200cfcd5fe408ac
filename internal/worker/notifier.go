// Package worker holds the background consumers of cost events.
package worker

import (
	"context"
	"fmt"

	"costmanager/internal/amqp"
	"costmanager/internal/core"
	"costmanager/internal/log"
)

// MonthlyReporter is the part of services.ReportService the notifier needs.
type MonthlyReporter interface {
	MonthlyReport(ctx context.Context, year, month int, display core.Currency) (core.MonthlyReport, error)
}

// Notifier recomputes the affected month whenever a cost is added and logs
// the refreshed total.
type Notifier struct {
	reports  MonthlyReporter
	currency core.Currency
	logger   *log.Logger
}

func NewNotifier(reports MonthlyReporter, currency core.Currency, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Discard()
	}
	return &Notifier{
		reports:  reports,
		currency: currency,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCostCreated is the amqp consumer callback. A returned error makes
// the message go back on the queue, so only store failures are returned.
func (n *Notifier) HandleCostCreated(ctx context.Context, msg *amqp.CostCreatedMessage) error {
	if err := core.ValidateMonth(msg.Month); err != nil {
		n.logger.WarnContext(ctx, "Dropping cost event with invalid month",
			log.FieldCostID, msg.ID, log.FieldMonth, msg.Month)
		return nil
	}

	report, err := n.reports.MonthlyReport(ctx, msg.Year, msg.Month, n.currency)
	if err != nil {
		return fmt.Errorf("refresh %04d-%02d: %w", msg.Year, msg.Month, err)
	}

	n.logger.InfoContext(ctx, "Month total refreshed",
		log.FieldCostID, msg.ID,
		log.FieldYear, report.Year,
		log.FieldMonth, core.MonthNames[report.Month-1],
		"entries", len(report.Costs),
		"total", fmt.Sprintf("%s%.2f", report.Total.Currency.Symbol(), report.Total.Total))
	return nil
}

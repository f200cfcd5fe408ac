package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/rates"
	"costmanager/internal/storage"
)

// ReportService computes the three report shapes. Every call loads all
// costs and a fresh rate table; nothing is cached between calls.
type ReportService struct {
	costs  storage.CostReader
	rates  rates.Source
	loc    *time.Location
	logger *log.Logger
}

// NewReportService buckets cost dates into years, months and days in loc.
func NewReportService(costs storage.CostReader, source rates.Source, loc *time.Location, logger *log.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportService{
		costs:  costs,
		rates:  source,
		loc:    loc,
		logger: logger.WithComponent(log.ComponentReports),
	}
}

// MonthlyReport lists the month's costs in their original currency and a
// total converted into display.
func (s *ReportService) MonthlyReport(ctx context.Context, year, month int, display core.Currency) (core.MonthlyReport, error) {
	if err := checkPeriod(month, display); err != nil {
		return core.MonthlyReport{}, err
	}
	costs, table, err := s.load(ctx, year, month)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	from, to := s.monthRange(year, month)
	report := core.MonthlyReport{
		Year:  year,
		Month: month,
		Costs: make([]core.ReportLine, 0),
		Total: core.ReportTotal{Currency: display},
	}
	var acc core.Accumulator
	for _, c := range costs {
		d := c.Date.In(s.loc)
		if !within(d, from, to) {
			continue
		}
		report.Costs = append(report.Costs, core.ReportLine{
			Sum:         c.Sum,
			Currency:    c.Currency,
			Category:    c.Category,
			Description: c.Description,
			Day:         d.Day(),
		})
		acc.Add(core.Convert(c.Sum, c.Currency, display, table))
	}
	report.Total.Total = acc.Rounded()
	return report, nil
}

// CategoryTotals sums the month's converted costs per category. Categories
// appear in order of their first cost; empty categories are omitted.
func (s *ReportService) CategoryTotals(ctx context.Context, year, month int, display core.Currency) ([]core.CategoryTotal, error) {
	if err := checkPeriod(month, display); err != nil {
		return nil, err
	}
	costs, table, err := s.load(ctx, year, month)
	if err != nil {
		return nil, err
	}

	from, to := s.monthRange(year, month)
	var order []string
	sums := make(map[string]*core.Accumulator)
	for _, c := range costs {
		if !within(c.Date.In(s.loc), from, to) {
			continue
		}
		acc, ok := sums[c.Category]
		if !ok {
			acc = &core.Accumulator{}
			sums[c.Category] = acc
			order = append(order, c.Category)
		}
		acc.Add(core.Convert(c.Sum, c.Currency, display, table))
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, core.CategoryTotal{ID: cat, Label: cat, Value: sums[cat].Rounded()})
	}
	return out, nil
}

// YearlyTotals returns exactly twelve converted monthly totals, January
// first, with zero for months without costs.
func (s *ReportService) YearlyTotals(ctx context.Context, year int, display core.Currency) ([]core.MonthTotal, error) {
	if !display.IsValid() {
		return nil, core.ErrInvalidCurrency
	}
	costs, table, err := s.load(ctx, year, 0)
	if err != nil {
		return nil, err
	}

	var months [12]core.Accumulator
	for _, c := range costs {
		d := c.Date.In(s.loc)
		if d.Year() != year {
			continue
		}
		months[d.Month()-1].Add(core.Convert(c.Sum, c.Currency, display, table))
	}

	out := make([]core.MonthTotal, 12)
	for i := range months {
		out[i] = core.MonthTotal{Month: core.MonthNames[i], Value: months[i].Rounded()}
	}
	return out, nil
}

// load reads the costs and the rate table concurrently.
func (s *ReportService) load(ctx context.Context, year, month int) ([]core.Cost, core.RateTable, error) {
	var (
		costs []core.Cost
		table core.RateTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		costs, err = s.costs.GetAllCosts(gctx)
		return err
	})
	g.Go(func() error {
		table = s.rates.FetchRates(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.LogError(ctx, "Failed to load costs for report", err, log.OpReport,
			log.NewFields().WithPeriod(year, month))
		return nil, nil, fmt.Errorf("load costs: %w", err)
	}
	return costs, table, nil
}

func (s *ReportService) monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 1, 0)
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func checkPeriod(month int, display core.Currency) error {
	if err := core.ValidateMonth(month); err != nil {
		return err
	}
	if !display.IsValid() {
		return core.ErrInvalidCurrency
	}
	return nil
}

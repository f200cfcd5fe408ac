package http

import (
	"errors"
	"net/http"

	"costmanager/internal/core"
	"costmanager/internal/log"
)

const msgReportFailed = "Failed to generate report. Please try again."

// reportParams parses the report query. Yearly reports ignore month.
func (s *Server) reportParams(w http.ResponseWriter, r *http.Request, withMonth bool) (ReportParams, bool) {
	query := r.URL.Query()
	if !withMonth {
		query.Del("month")
	}
	p, err := ParseReportParams(query, s.now(), s.loc)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return p, false
	}
	return p, true
}

// writeReportError maps service errors: bad input is 400, anything else a
// generic 500 with the detail in the log.
func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, p ReportParams, err error) {
	if errors.Is(err, core.ErrInvalidMonth) || errors.Is(err, core.ErrInvalidCurrency) {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ctx := r.Context()
	log.FromContext(ctx).LogError(ctx, "Failed to generate report", err, log.OpReport,
		log.NewFields().WithPeriod(p.Year, p.Month))
	InternalServerError(msgReportFailed).Write(w)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r, true)
	if !ok {
		return
	}
	report, err := s.reports.MonthlyReport(r.Context(), p.Year, p.Month, p.Currency)
	if err != nil {
		s.writeReportError(w, r, p, err)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r, true)
	if !ok {
		return
	}
	totals, err := s.reports.CategoryTotals(r.Context(), p.Year, p.Month, p.Currency)
	if err != nil {
		s.writeReportError(w, r, p, err)
		return
	}
	NewJSONResponse().Body(totals).Write(w)
}

func (s *Server) handleYearlyTotals(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r, false)
	if !ok {
		return
	}
	totals, err := s.reports.YearlyTotals(r.Context(), p.Year, p.Currency)
	if err != nil {
		p.Month = 0
		s.writeReportError(w, r, p, err)
		return
	}
	NewJSONResponse().Body(totals).Write(w)
}

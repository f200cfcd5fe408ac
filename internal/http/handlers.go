package http

import (
	"context"
	"net/http"
	"time"

	"costmanager/internal/core"
)

type healthMetrics struct {
	Requests         int64 `json:"requests"`
	ServerErrors     int64 `json:"server_errors"`
	LastDurationUs   int64 `json:"last_duration_us"`
	RateLimited      int64 `json:"rate_limited"`
	SuspiciousProbes int64 `json:"suspicious_probes"`
}

type healthView struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Metrics   healthMetrics `json:"metrics"`
}

// handleHealth reports liveness with the middleware counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	NewJSONResponse().Body(healthView{
		Status:    "ok",
		Timestamp: s.now().Format(time.RFC3339),
		Uptime:    s.now().Sub(s.started).Round(time.Second).String(),
		Metrics: healthMetrics{
			Requests:         m.TotalRequests,
			ServerErrors:     m.ServerErrors,
			LastDurationUs:   m.LastDurationMicros,
			RateLimited:      s.limiter.Hits(),
			SuspiciousProbes: s.clients.Probes(),
		},
	}).Write(w)
}

// handleReady pings the cost store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"storage": "ok"}
	status, code := "ready", http.StatusOK
	if err := s.costs.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err.Error())
		checks["storage"] = "unavailable"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	NewJSONResponse().Status(code).Body(map[string]any{"status": status, "checks": checks}).Write(w)
}

type currencyView struct {
	Code   core.Currency `json:"code"`
	Symbol string        `json:"symbol"`
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	out := make([]currencyView, 0, len(core.Currencies))
	for _, c := range core.Currencies {
		out = append(out, currencyView{Code: c, Symbol: c.Symbol()})
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(core.Categories).Write(w)
}

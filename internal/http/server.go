// Package http exposes the cost, report and settings operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/middleware/ratelimit"
	"costmanager/internal/middleware/security"
	"costmanager/internal/middleware/trace"
)

// CostAPI is implemented by services.CostService.
type CostAPI interface {
	AddCost(ctx context.Context, n core.NewCost) (core.Cost, error)
	ListCosts(ctx context.Context) ([]core.Cost, error)
	Ping(ctx context.Context) error
}

// ReportAPI is implemented by services.ReportService.
type ReportAPI interface {
	MonthlyReport(ctx context.Context, year, month int, display core.Currency) (core.MonthlyReport, error)
	CategoryTotals(ctx context.Context, year, month int, display core.Currency) ([]core.CategoryTotal, error)
	YearlyTotals(ctx context.Context, year int, display core.Currency) ([]core.MonthTotal, error)
}

// SettingsAPI is implemented by settings.Settings.
type SettingsAPI interface {
	ExchangeURL(ctx context.Context) (string, error)
	SetExchangeURL(ctx context.Context, url string) error
	ResetExchangeURL(ctx context.Context) (string, error)
	DefaultURL() string
}

// Deps are the collaborators of the server.
type Deps struct {
	Costs    CostAPI
	Reports  ReportAPI
	Settings SettingsAPI
	Logger   *log.Logger
	// Location buckets "now" into the default report month.
	Location *time.Location
	// RequestsPerMinute limits state-changing requests per client.
	RequestsPerMinute int
	// TrustedProxies are CIDRs, besides private networks, whose
	// X-Forwarded-For is used to identify clients.
	TrustedProxies []string
	// Now overrides the clock in tests.
	Now func() time.Time
}

type Server struct {
	http.Server
	costs    CostAPI
	reports  ReportAPI
	settings SettingsAPI
	logger   *log.Logger
	loc      *time.Location
	now      func() time.Time
	started  time.Time

	tracer  *trace.Middleware
	clients *security.ClientIPResolver
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	clients := security.NewClientIPResolver(deps.Logger)
	for _, cidr := range deps.TrustedProxies {
		if err := clients.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s := &Server{
		costs:    deps.Costs,
		reports:  deps.Reports,
		settings: deps.Settings,
		logger:   logger,
		loc:      deps.Location,
		now:      deps.Now,
		started:  deps.Now(),
		tracer:   trace.NewMiddleware(clients.ClientIP, deps.Logger),
		clients:  clients,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RequestsPerMinute}, deps.Logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /currencies", s.handleCurrencies)
	mux.HandleFunc("GET /categories", s.handleCategories)

	mux.HandleFunc("POST /costs", s.handleAddCost)
	mux.HandleFunc("GET /costs", s.handleListCosts)

	mux.HandleFunc("GET /reports/monthly", s.handleMonthlyReport)
	mux.HandleFunc("GET /reports/categories", s.handleCategoryTotals)
	mux.HandleFunc("GET /reports/yearly", s.handleYearlyTotals)

	mux.HandleFunc("GET /settings/exchange-url", s.handleGetExchangeURL)
	mux.HandleFunc("PUT /settings/exchange-url", s.handleSetExchangeURL)
	mux.HandleFunc("DELETE /settings/exchange-url", s.handleResetExchangeURL)

	var h http.Handler = mux
	h = s.limiter.Middleware(clients.ClientIP, ratelimit.WriteMethods, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(h)
	h = clients.ProbeLogger(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server")
		err = s.Server.Shutdown(ctx)
	})
	return err
}

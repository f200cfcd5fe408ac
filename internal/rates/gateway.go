// Package rates fetches the current exchange rate table from the configured
// endpoint.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/settings"
)

// DefaultTimeout bounds a single rate request.
const DefaultTimeout = 10 * time.Second

// maxBody caps the response size read from the endpoint.
const maxBody = 1 << 20

var errNoRates = errors.New("response has no rates")

// Source yields a rate table for one report computation.
type Source interface {
	FetchRates(ctx context.Context) core.RateTable
}

// Gateway reads the endpoint from settings on every call and never caches
// the returned table.
type Gateway struct {
	settings settings.Provider
	client   *http.Client
	logger   *log.Logger
}

func NewGateway(provider settings.Provider, client *http.Client, logger *log.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Gateway{settings: provider, client: client, logger: logger.WithComponent(log.ComponentRates)}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns the remote table, or the fallback table when anything
// goes wrong. It never returns an error.
func (g *Gateway) FetchRates(ctx context.Context) core.RateTable {
	url, err := g.settings.ExchangeURL(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "Using fallback exchange rates", log.FieldError, err.Error())
		return core.FallbackRates()
	}
	table, err := g.fetch(ctx, url)
	if err != nil {
		g.logger.WarnContext(ctx, "Using fallback exchange rates", log.FieldURL, url, log.FieldError, err.Error())
		return core.FallbackRates()
	}
	g.logger.DebugContext(ctx, "Fetched exchange rates", log.FieldURL, url, "count", len(table))
	return table
}

func (g *Gateway) fetch(ctx context.Context, url string) (core.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get rates: unexpected status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if body.Rates == nil {
		return nil, errNoRates
	}
	return core.RateTable(body.Rates), nil
}

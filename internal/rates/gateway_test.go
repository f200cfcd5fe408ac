package rates

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmanager/internal/core"
	"costmanager/internal/log"
	"costmanager/internal/settings"
)

type staticURL string

func (s staticURL) ExchangeURL(context.Context) (string, error) { return string(s), nil }

type brokenSettings struct{}

func (brokenSettings) ExchangeURL(context.Context) (string, error) {
	return "", errors.New("settings unavailable")
}

func newTestGateway(t *testing.T, provider settings.Provider) (*Gateway, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewGateway(provider, nil, log.New(log.Config{Output: &buf})), &buf
}

func TestFetchRatesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1,"EUR":0.9,"GBP":0.79,"ILS":3.7}}`))
	}))
	defer srv.Close()

	g, logs := newTestGateway(t, staticURL(srv.URL))
	got := g.FetchRates(context.Background())
	assert.Equal(t, core.RateTable{"USD": 1, "EUR": 0.9, "GBP": 0.79, "ILS": 3.7}, got)
	assert.NotContains(t, logs.String(), "fallback")
}

func TestFetchRatesFallback(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":`))
		}},
		{"missing rates", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"USD"}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			g, logs := newTestGateway(t, staticURL(srv.URL))
			got := g.FetchRates(context.Background())
			assert.Equal(t, core.FallbackRates(), got)
			assert.Contains(t, logs.String(), "Using fallback exchange rates")
		})
	}
}

func TestFetchRatesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, _ := newTestGateway(t, staticURL(url))
	assert.Equal(t, core.FallbackRates(), g.FetchRates(context.Background()))
}

func TestFetchRatesSettingsError(t *testing.T) {
	g, logs := newTestGateway(t, brokenSettings{})
	assert.Equal(t, core.FallbackRates(), g.FetchRates(context.Background()))
	assert.Contains(t, logs.String(), "settings unavailable")
}

func TestFetchRatesReadsURLEachCall(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	a := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsA.Add(1)
		_, _ = w.Write([]byte(`{"rates":{"USD":1,"EUR":0.5}}`))
	}))
	defer a.Close()
	b := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hitsB.Add(1)
		_, _ = w.Write([]byte(`{"rates":{"USD":1,"EUR":0.25}}`))
	}))
	defer b.Close()

	s := settings.New(settings.NewMemoryStore(), a.URL)
	g, _ := newTestGateway(t, s)

	assert.Equal(t, 0.5, g.FetchRates(context.Background())["EUR"])
	require.NoError(t, s.SetExchangeURL(context.Background(), b.URL))
	assert.Equal(t, 0.25, g.FetchRates(context.Background())["EUR"])
	assert.Equal(t, 0.25, g.FetchRates(context.Background())["EUR"])
	assert.EqualValues(t, 1, hitsA.Load())
	assert.EqualValues(t, 2, hitsB.Load())
}

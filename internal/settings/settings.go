// Package settings persists user-editable configuration that outlives a
// session, independently of the costs store.
package settings

import (
	"context"
	"fmt"
	"strings"
)

const (
	// KeyExchangeURL holds the exchange rate endpoint.
	KeyExchangeURL = "exchangeUrl"

	// DefaultExchangeURL is used until a user stores another endpoint.
	DefaultExchangeURL = "https://api.exchangerate-api.com/v4/latest/USD"
)

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Provider is what the exchange rate gateway needs to locate its endpoint.
type Provider interface {
	ExchangeURL(ctx context.Context) (string, error)
}

// Settings reads and writes the exchange URL. Every read goes to the
// underlying store.
type Settings struct {
	store      Store
	defaultURL string
}

func New(store Store, defaultURL string) *Settings {
	if strings.TrimSpace(defaultURL) == "" {
		defaultURL = DefaultExchangeURL
	}
	return &Settings{store: store, defaultURL: defaultURL}
}

// ExchangeURL returns the stored endpoint, or the default when none is stored.
func (s *Settings) ExchangeURL(ctx context.Context) (string, error) {
	v, ok, err := s.store.Get(ctx, KeyExchangeURL)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", KeyExchangeURL, err)
	}
	if !ok || v == "" {
		return s.defaultURL, nil
	}
	return v, nil
}

// SetExchangeURL stores url as is. Callers validate it beforehand.
func (s *Settings) SetExchangeURL(ctx context.Context, url string) error {
	if err := s.store.Set(ctx, KeyExchangeURL, url); err != nil {
		return fmt.Errorf("set %s: %w", KeyExchangeURL, err)
	}
	return nil
}

// ResetExchangeURL stores the default endpoint and returns it.
func (s *Settings) ResetExchangeURL(ctx context.Context) (string, error) {
	if err := s.SetExchangeURL(ctx, s.defaultURL); err != nil {
		return "", err
	}
	return s.defaultURL, nil
}

// DefaultURL returns the endpoint used when nothing is stored.
func (s *Settings) DefaultURL() string {
	return s.defaultURL
}

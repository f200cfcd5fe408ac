package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"costmanager/internal/core"
)

func TestParseReportParams(t *testing.T) {
	now := time.Date(2024, time.July, 31, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		loc     *time.Location
		want    ReportParams
		wantErr bool
	}{
		{"defaults", url.Values{}, time.UTC, ReportParams{2024, 7, core.USD}, false},
		{"defaults follow location", url.Values{}, time.FixedZone("UTC+2", 7200), ReportParams{2024, 8, core.USD}, false},
		{"all values", url.Values{"year": {"2023"}, "month": {"2"}, "currency": {"eur"}}, time.UTC, ReportParams{2023, 2, core.EUR}, false},
		{"month too high", url.Values{"month": {"13"}}, time.UTC, ReportParams{}, true},
		{"month zero", url.Values{"month": {"0"}}, time.UTC, ReportParams{}, true},
		{"month not a number", url.Values{"month": {"abc"}}, time.UTC, ReportParams{}, true},
		{"year not a number", url.Values{"year": {"twenty"}}, time.UTC, ReportParams{}, true},
		{"unknown currency", url.Values{"currency": {"JPY"}}, time.UTC, ReportParams{}, true},
		{"EURO is not a currency", url.Values{"currency": {"EURO"}}, time.UTC, ReportParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportParams(tt.query, now, tt.loc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/costs", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, `{"sum": 12.5, "currency": "usd", "category": " Food ", "description": "lunch\u0000"}`)
	if got := p.Get("sum"); got != "12.5" {
		t.Errorf("sum = %q", got)
	}
	if got := p.Get("category"); got != "Food" {
		t.Errorf("category = %q", got)
	}
	if got := p.Get("description"); got != "lunch" {
		t.Errorf("description = %q", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("missing = %q", got)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "sum=12%2C50&currency=EUR&category=Bills&description=power")
	n, err := ParseNewCost(p)
	if err != nil {
		t.Fatalf("ParseNewCost() error = %v", err)
	}
	want := core.NewCost{Sum: 12.5, Currency: core.EUR, Category: "Bills", Description: "power"}
	if n != want {
		t.Errorf("got %+v, want %+v", n, want)
	}
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/costs", strings.NewReader(`{"sum": `))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	if err := p.Parse(); err == nil {
		t.Fatal("expected cached parse error")
	}
}

func TestParseNewCostRejectsBadAmounts(t *testing.T) {
	for _, body := range []string{`{"sum": -3}`, `{"sum": 0}`, `{"sum": "abc"}`, `{}`, `{"sum": true}`} {
		_, err := ParseNewCost(newParser(t, body))
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("%s: expected ErrInvalidAmount, got %v", body, err)
		}
	}
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"costmanager/internal/core"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

var (
	errInvalidYear  = errors.New("invalid year")
	errInvalidMonth = errors.New("invalid month: must be between 1 and 12")
	errInvalidCur   = fmt.Errorf("invalid currency: must be one of %v", core.Currencies)
)

// ReportParams holds the query parameters shared by the report endpoints.
type ReportParams struct {
	Year     int
	Month    int
	Currency core.Currency
}

// ParseReportParams reads year, month and currency from query. Missing
// values default to the current month in loc and USD; present but invalid
// values are errors.
func ParseReportParams(query url.Values, now time.Time, loc *time.Location) (ReportParams, error) {
	now = now.In(loc)
	p := ReportParams{
		Year:     now.Year(),
		Month:    int(now.Month()),
		Currency: core.USD,
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return p, errInvalidYear
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || core.ValidateMonth(m) != nil {
			return p, errInvalidMonth
		}
		p.Month = m
	}
	if v := strings.TrimSpace(query.Get("currency")); v != "" {
		c, err := core.ParseCurrency(v)
		if err != nil {
			return p, errInvalidCur
		}
		p.Currency = c
	}
	return p, nil
}

// RequestBodyParser reads a JSON object or a form-encoded body once and
// serves string values from either.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal([]byte(trimmed), &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the trimmed, control-character-free value for key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// ParseNewCost builds a NewCost from the parsed body. The amount accepts
// dot or comma decimals; everything else is validated by the service.
func ParseNewCost(p *RequestBodyParser) (core.NewCost, error) {
	sum, err := core.ParseAmount(p.Get("sum"))
	if err != nil {
		return core.NewCost{}, err
	}
	return core.NewCost{
		Sum:         sum,
		Currency:    core.Currency(p.Get("currency")),
		Category:    p.Get("category"),
		Description: p.Get("description"),
	}, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding space.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

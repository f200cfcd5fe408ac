// Package core provides money parsing and rounding utilities.
//
// Amounts travel as float64 between the store and the converter. Aggregates
// are accumulated as decimals so that the only rounding step is the final
// two-decimal rounding of a report total.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a positive amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. A comma followed
// by exactly three digits reads as a thousands separator and is rejected, as
// is mixing both separators. Signs, zero and anything that is not a plain
// decimal number are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("1,000") -> 0, ErrInvalidAmount
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		if strings.Count(s, ",") > 1 || strings.Contains(s, ".") || len(s)-i-1 == 3 {
			return 0, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// Accumulator sums converted amounts without intermediate rounding.
type Accumulator struct {
	total decimal.Decimal
}

// Add adds one converted amount. Non-finite values are not representable
// as decimals and are skipped.
func (a *Accumulator) Add(amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	a.total = a.total.Add(decimal.NewFromFloat(amount))
}

// Rounded returns the sum rounded half away from zero to 2 decimal places.
func (a *Accumulator) Rounded() float64 {
	return Round2(a.total)
}

// Round2 rounds d half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

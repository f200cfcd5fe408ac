package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	ILS Currency = "ILS"
)

type (
	Currency string

	// Cost is a single recorded expense. ID and Date are assigned by the store
	// on creation and never change afterwards.
	Cost struct {
		ID          string    `json:"id"`
		Sum         float64   `json:"sum"`
		Currency    Currency  `json:"currency"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
	}

	// NewCost is the caller-supplied part of a Cost.
	NewCost struct {
		Sum         float64  `json:"sum" validate:"gt=0"`
		Currency    Currency `json:"currency" validate:"required,oneof=USD EUR GBP ILS"`
		Category    string   `json:"category" validate:"required,max=100"`
		Description string   `json:"description" validate:"required,max=500"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrFieldTooLong     = errors.New("field too long")
)

// Currencies lists the supported currency codes in display order.
var Currencies = []Currency{USD, EUR, GBP, ILS}

// Categories is the suggested category list offered to users. The store
// accepts any non-empty label.
var Categories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills",
	"Healthcare",
	"Education",
	"Travel",
	"Other",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseCurrency returns the Currency for code, case-insensitively.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	switch c {
	case USD, EUR, GBP, ILS:
		return true
	default:
		return false
	}
}

func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol for c, or the code itself when unknown.
func (c Currency) Symbol() string {
	switch c {
	case USD:
		return "$"
	case EUR:
		return "€"
	case GBP:
		return "£"
	case ILS:
		return "₪"
	default:
		return string(c)
	}
}

// Normalize trims free-form text fields.
func (n NewCost) Normalize() NewCost {
	n.Category = strings.TrimSpace(n.Category)
	n.Description = strings.TrimSpace(n.Description)
	n.Currency = Currency(strings.ToUpper(strings.TrimSpace(string(n.Currency))))
	return n
}

func (n NewCost) Validate() error {
	if math.IsNaN(n.Sum) || math.IsInf(n.Sum, 0) {
		return ErrInvalidAmount
	}
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Sum":
		return ErrInvalidAmount
	case "Currency":
		return ErrInvalidCurrency
	case "Category":
		if verrs[0].Tag() == "max" {
			return fmt.Errorf("%w: category (max 100 characters)", ErrFieldTooLong)
		}
		return ErrEmptyCategory
	case "Description":
		if verrs[0].Tag() == "max" {
			return fmt.Errorf("%w: description (max 500 characters)", ErrFieldTooLong)
		}
		return ErrEmptyDescription
	}
	return err
}

// ValidateMonth checks a 1-indexed calendar month.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// ValidateExchangeURL checks that raw is an absolute http(s) URL.
func ValidateExchangeURL(raw string) error {
	if err := validate.Var(strings.TrimSpace(raw), "required,http_url"); err != nil {
		return errors.New("please enter a valid URL")
	}
	return nil
}

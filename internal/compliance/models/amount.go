package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "txwatch/pkg/domain-errors"
)

// ParseAmount parses a monetary amount from its decimal string form.
// NaN, infinities, zero and negative values are validation errors.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, dErrors.New(dErrors.CodeValidation, "amount must be a finite number")
	}
	return d, ValidateAmount(d)
}

// AmountFromFloat converts a float amount, rejecting non-finite and
// non-positive values before conversion.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, dErrors.New(dErrors.CodeValidation, "amount must be a finite number")
	}
	d := decimal.NewFromFloat(f)
	return d, ValidateAmount(d)
}

// ValidateAmount enforces a strictly positive amount.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

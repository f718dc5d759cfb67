// Package policy holds the tunable parameters of the compliance rules.
package policy

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "txwatch/pkg/domain-errors"
)

// DefaultStructuringThreshold is the number of same-day transfers, candidate
// included, at which structuring is suspected.
const DefaultStructuringThreshold = 3

// RuleConfig parameterizes the rule set. It is immutable once handed to an
// engine; callers change policy by building a new engine.
type RuleConfig struct {
	// DailyLimits maps a currency code to its per-client daily cap.
	// Currencies not listed are never checked against a limit.
	DailyLimits map[string]decimal.Decimal
	// HighRiskCountries is matched case-insensitively against Client.Country.
	HighRiskCountries []string
	// StructuringThreshold is the same-day transfer count that triggers the
	// structuring rule.
	StructuringThreshold int
}

// Default returns the built-in policy.
func Default() RuleConfig {
	return RuleConfig{
		DailyLimits: map[string]decimal.Decimal{
			"BRL": decimal.NewFromInt(20000),
			"USD": decimal.NewFromInt(50000),
			"EUR": decimal.NewFromInt(40000),
		},
		HighRiskCountries:    []string{"Panama", "Cayman Islands", "Bahamas", "Malta"},
		StructuringThreshold: DefaultStructuringThreshold,
	}
}

// Validate rejects configurations the rules cannot run with.
func (c RuleConfig) Validate() error {
	for currency, limit := range c.DailyLimits {
		if strings.TrimSpace(currency) == "" {
			return dErrors.New(dErrors.CodeConfiguration, "daily limit currency cannot be empty")
		}
		if !limit.IsPositive() {
			return dErrors.Newf(dErrors.CodeConfiguration, "daily limit for %s must be positive", currency)
		}
	}
	for _, country := range c.HighRiskCountries {
		if strings.TrimSpace(country) == "" {
			return dErrors.New(dErrors.CodeConfiguration, "high-risk country cannot be empty")
		}
	}
	if c.StructuringThreshold < 1 {
		return dErrors.Newf(dErrors.CodeConfiguration, "structuring threshold must be at least 1, got %d", c.StructuringThreshold)
	}
	return nil
}

// LimitFor returns the daily limit for currency, if one is configured.
func (c RuleConfig) LimitFor(currency string) (decimal.Decimal, bool) {
	limit, ok := c.DailyLimits[currency]
	return limit, ok
}

// IsHighRisk reports whether country is on the high-risk list.
func (c RuleConfig) IsHighRisk(country string) bool {
	country = strings.TrimSpace(country)
	if country == "" {
		return false
	}
	return slices.ContainsFunc(c.HighRiskCountries, func(hr string) bool {
		return strings.EqualFold(strings.TrimSpace(hr), country)
	})
}

// Clone returns a deep copy so the engine cannot observe later mutation of
// the caller's maps and slices.
func (c RuleConfig) Clone() RuleConfig {
	limits := make(map[string]decimal.Decimal, len(c.DailyLimits))
	for k, v := range c.DailyLimits {
		limits[k] = v
	}
	return RuleConfig{
		DailyLimits:          limits,
		HighRiskCountries:    slices.Clone(c.HighRiskCountries),
		StructuringThreshold: c.StructuringThreshold,
	}
}

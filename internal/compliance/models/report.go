package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientReport summarizes a client's activity over an optional period.
// Totals are kept per currency; amounts in different currencies are never summed.
type ClientReport struct {
	Client           Client                            `json:"client"`
	From             *time.Time                        `json:"from,omitempty"`
	To               *time.Time                        `json:"to,omitempty"`
	TotalsByCurrency map[string]decimal.Decimal        `json:"totals_by_currency"`
	ByType           map[TransactionType]TypeBreakdown `json:"by_type"`
	TransactionCount int                               `json:"transaction_count"`
	AlertCount       int                               `json:"alert_count"`
	Transactions     []Transaction                     `json:"transactions"`
}

// TypeBreakdown counts one transaction type and totals it per currency.
type TypeBreakdown struct {
	Count            int                        `json:"count"`
	TotalsByCurrency map[string]decimal.Decimal `json:"totals_by_currency"`
}

// ReportPeriod bounds a report. Zero values are open-ended; To is inclusive.
type ReportPeriod struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls within the period.
func (p ReportPeriod) Contains(ts time.Time) bool {
	if !p.From.IsZero() && ts.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && ts.After(p.To) {
		return false
	}
	return true
}

// IsOpen reports whether the period has no bounds at all.
func (p ReportPeriod) IsOpen() bool {
	return p.From.IsZero() && p.To.IsZero()
}

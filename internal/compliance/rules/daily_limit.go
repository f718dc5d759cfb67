package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
)

// NameDailyLimit identifies alerts raised by DailyLimit.
const NameDailyLimit = "Daily limit exceeded"

// LimitLookup resolves the configured daily limit of a currency.
type LimitLookup interface {
	LimitFor(currency string) (decimal.Decimal, bool)
}

// DailyLimit fires when a client's same-day total in a currency goes strictly
// above that currency's limit. Currencies without a configured limit are
// never checked.
type DailyLimit struct {
	limits LimitLookup
}

func NewDailyLimit(limits LimitLookup) *DailyLimit {
	return &DailyLimit{limits: limits}
}

func (r *DailyLimit) Name() string { return NameDailyLimit }

func (r *DailyLimit) Accepts(tx models.Transaction, _ models.Client) bool {
	_, ok := r.limits.LimitFor(tx.Currency)
	return ok
}

func (r *DailyLimit) Evaluate(tx models.Transaction, _ models.Client, agg *aggregate.Aggregates) *Finding {
	limit, ok := r.limits.LimitFor(tx.Currency)
	if !ok {
		return nil
	}
	total := agg.SameDayTotal(tx.Currency)
	if !total.GreaterThan(limit) {
		return nil
	}
	return &Finding{
		Severity: models.SeverityHigh,
		Description: fmt.Sprintf("Same-day total of %s exceeds the daily limit of %s",
			formatMoney(tx.Currency, total), formatMoney(tx.Currency, limit)),
	}
}

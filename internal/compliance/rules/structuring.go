package rules

import (
	"fmt"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
)

// NameStructuring identifies alerts raised by Structuring.
const NameStructuring = "Possible structuring"

// Structuring fires when a client's same-day transfers, candidate included,
// reach the threshold, regardless of amounts.
type Structuring struct {
	threshold int
}

func NewStructuring(threshold int) *Structuring {
	return &Structuring{threshold: threshold}
}

func (r *Structuring) Name() string { return NameStructuring }

func (r *Structuring) Accepts(tx models.Transaction, _ models.Client) bool {
	return tx.Type == models.TransactionTypeTransfer
}

func (r *Structuring) Evaluate(_ models.Transaction, _ models.Client, agg *aggregate.Aggregates) *Finding {
	count := len(agg.SameDayOfType(models.TransactionTypeTransfer))
	if count < r.threshold {
		return nil
	}
	return &Finding{
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("%d transfers on %s may indicate structuring", count, agg.Day()),
	}
}

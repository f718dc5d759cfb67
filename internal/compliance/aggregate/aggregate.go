// Package aggregate computes the same-day views of a client's transaction
// history that rules evaluate against. Every function here is pure and is
// defined over history ∪ {candidate}.
package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
)

// SameDayTotal sums the amounts of clientID's transactions on day in the
// given currency, candidate included. Currencies match by exact string.
func SameDayTotal(clientID id.ClientID, currency, day string, history []models.Transaction, candidate models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range union(history, candidate) {
		if tx.ClientID == clientID && tx.Day() == day && tx.Currency == currency {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SameDayTransfersOfType returns clientID's transactions of txType on day,
// candidate included, ordered by OccurredAt.
func SameDayTransfersOfType(clientID id.ClientID, txType models.TransactionType, day string, history []models.Transaction, candidate models.Transaction) []models.Transaction {
	var out []models.Transaction
	for _, tx := range union(history, candidate) {
		if tx.ClientID == clientID && tx.Day() == day && tx.Type == txType {
			out = append(out, tx)
		}
	}
	sortByTime(out)
	return out
}

// Aggregates is the candidate's client-and-day slice of history, built once
// per evaluation so rules do not rescan the full history.
type Aggregates struct {
	candidate models.Transaction
	day       string
	sameDay   []models.Transaction
}

// Build scopes history to the candidate's client and calendar day.
func Build(candidate models.Transaction, history []models.Transaction) *Aggregates {
	day := candidate.Day()
	var sameDay []models.Transaction
	for _, tx := range union(history, candidate) {
		if tx.ClientID == candidate.ClientID && tx.Day() == day {
			sameDay = append(sameDay, tx)
		}
	}
	sortByTime(sameDay)
	return &Aggregates{candidate: candidate, day: day, sameDay: sameDay}
}

// Day is the calendar day the aggregates are scoped to.
func (a *Aggregates) Day() string { return a.day }

// SameDayTotal is the same-day total in currency.
func (a *Aggregates) SameDayTotal(currency string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range a.sameDay {
		if tx.Currency == currency {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SameDayOfType returns same-day transactions of txType in time order.
func (a *Aggregates) SameDayOfType(txType models.TransactionType) []models.Transaction {
	var out []models.Transaction
	for _, tx := range a.sameDay {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// SameDayCount is the number of same-day transactions, candidate included.
func (a *Aggregates) SameDayCount() int { return len(a.sameDay) }

// union yields history plus candidate, counting the candidate once when the
// caller already stored it before evaluating.
func union(history []models.Transaction, candidate models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(history)+1)
	for _, tx := range history {
		if !candidate.ID.IsNil() && tx.ID == candidate.ID {
			continue
		}
		out = append(out, tx)
	}
	return append(out, candidate)
}

func sortByTime(txs []models.Transaction) {
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
}

// TotalsByCurrency sums amounts per currency code. Used for client reports,
// where no day scoping applies.
func TotalsByCurrency(txs []models.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.Currency] = totals[tx.Currency].Add(tx.Amount)
	}
	return totals
}

// BreakdownByType counts transactions and totals their amounts per currency
// for each transaction type. Every type is present, even with no activity.
func BreakdownByType(txs []models.Transaction) map[models.TransactionType]models.TypeBreakdown {
	out := map[models.TransactionType]models.TypeBreakdown{
		models.TransactionTypeDeposit:    {TotalsByCurrency: map[string]decimal.Decimal{}},
		models.TransactionTypeWithdrawal: {TotalsByCurrency: map[string]decimal.Decimal{}},
		models.TransactionTypeTransfer:   {TotalsByCurrency: map[string]decimal.Decimal{}},
	}
	for _, tx := range txs {
		b, ok := out[tx.Type]
		if !ok {
			b = models.TypeBreakdown{TotalsByCurrency: map[string]decimal.Decimal{}}
		}
		b.Count++
		b.TotalsByCurrency[tx.Currency] = b.TotalsByCurrency[tx.Currency].Add(tx.Amount)
		out[tx.Type] = b
	}
	return out
}

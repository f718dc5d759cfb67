package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// TransactionType classifies a money movement.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid transaction type %q", s)
	}
	return t, nil
}

// dayLayout is the calendar-date prefix of an ISO-8601 timestamp.
const dayLayout = "2006-01-02"

// Transaction is an append-only record of a money movement. It is created
// once by the submission flow and never mutated.
type Transaction struct {
	ID           id.TransactionID `json:"id"`
	ClientID     id.ClientID      `json:"client_id"`
	Type         TransactionType  `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency"`
	Counterparty string           `json:"counterparty"`
	OccurredAt   time.Time        `json:"occurred_at"`
	// Seq is the store-assigned insertion order, zero until stored. It
	// separates what was known at submission from later backdated arrivals.
	Seq int64 `json:"-"`
}

// Day returns the calendar date of OccurredAt as written in its own offset.
// No timezone normalization is applied: a transaction stamped
// 2024-05-01T23:30:00-03:00 belongs to 2024-05-01.
func (t Transaction) Day() string {
	return t.OccurredAt.Format(dayLayout)
}

// DayOf formats a timestamp the same way Transaction.Day does.
func DayOf(ts time.Time) string {
	return ts.Format(dayLayout)
}

// TrimCurrency strips surrounding whitespace from a currency code. Case is
// kept as given: codes compare by exact match, so "brl" is not "BRL" and has
// no daily limit unless one is configured under that spelling.
func TrimCurrency(s string) string {
	return strings.TrimSpace(s)
}

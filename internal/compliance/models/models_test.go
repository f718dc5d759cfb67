package models

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"integer", "10000", "10000", false},
		{"cents", "5000.01", "5000.01", false},
		{"surrounding whitespace", " 42.5 ", "42.5", false},
		{"empty", "", "", true},
		{"zero", "0", "", true},
		{"negative", "-5", "", true},
		{"not a number", "NaN", "", true},
		{"infinity", "Inf", "", true},
		{"garbage", "12abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestAmountFromFloat(t *testing.T) {
	t.Run("rejects NaN without panicking", func(t *testing.T) {
		_, err := AmountFromFloat(math.NaN())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects infinities", func(t *testing.T) {
		_, err := AmountFromFloat(math.Inf(1))
		require.Error(t, err)
		_, err = AmountFromFloat(math.Inf(-1))
		require.Error(t, err)
	})

	t.Run("rejects negatives", func(t *testing.T) {
		_, err := AmountFromFloat(-5)
		require.Error(t, err)
	})

	t.Run("accepts positive values", func(t *testing.T) {
		d, err := AmountFromFloat(3500.5)
		require.NoError(t, err)
		assert.Equal(t, "3500.5", d.String())
	})
}

func TestTransactionDay(t *testing.T) {
	t.Run("uses the timestamp's own offset", func(t *testing.T) {
		ts, err := time.Parse(time.RFC3339, "2024-05-01T23:30:00-03:00")
		require.NoError(t, err)
		tx := Transaction{OccurredAt: ts}
		assert.Equal(t, "2024-05-01", tx.Day())
		// Same instant in UTC falls on the next day; the stored offset wins.
		assert.Equal(t, "2024-05-02", DayOf(ts.UTC()))
	})
}

func TestEnums(t *testing.T) {
	t.Run("transaction types parse case-insensitively", func(t *testing.T) {
		got, err := ParseTransactionType(" Transfer ")
		require.NoError(t, err)
		assert.Equal(t, TransactionTypeTransfer, got)

		_, err = ParseTransactionType("wire")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("alert statuses", func(t *testing.T) {
		got, err := ParseAlertStatus("UNDER_REVIEW")
		require.NoError(t, err)
		assert.Equal(t, AlertStatusUnderReview, got)

		_, err = ParseAlertStatus("closed")
		assert.Error(t, err)
	})

	t.Run("risk level and kyc", func(t *testing.T) {
		_, err := ParseRiskLevel("high")
		assert.NoError(t, err)
		_, err = ParseKYCStatus("approved")
		assert.NoError(t, err)
		_, err = ParseSeverity("critical")
		assert.Error(t, err)
	})
}

func TestNewClient_Invariants(t *testing.T) {
	now := time.Now()

	t.Run("valid client", func(t *testing.T) {
		c, err := NewClient(id.NewClientID(), " Maria ", "Brazil", RiskLevelLow, KYCStatusApproved, now)
		require.NoError(t, err)
		assert.Equal(t, "Maria", c.Name)
		assert.Equal(t, now, c.RegisteredAt)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := NewClient(id.NewClientID(), "", "Brazil", RiskLevelLow, KYCStatusApproved, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewClient(id.NewClientID(), "Maria", " ", RiskLevelLow, KYCStatusApproved, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewClient(id.ClientID{}, "Maria", "Brazil", RiskLevelLow, KYCStatusApproved, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects unknown enums", func(t *testing.T) {
		_, err := NewClient(id.NewClientID(), "Maria", "Brazil", RiskLevel("extreme"), KYCStatusApproved, now)
		assert.Error(t, err)
	})
}

// TestAlertChangeStatus documents that status changes are unconstrained overwrites.
func TestAlertChangeStatus(t *testing.T) {
	now := time.Now()
	alert := &Alert{Status: AlertStatusNew}

	transitions := []AlertStatus{
		AlertStatusUnderReview,
		AlertStatusResolved,
		AlertStatusNew,
		AlertStatusResolved,
		AlertStatusUnderReview,
		AlertStatusNew,
	}
	for _, next := range transitions {
		require.NoError(t, alert.ChangeStatus(next, now))
		assert.Equal(t, next, alert.Status)
	}
	assert.Equal(t, now, alert.UpdatedAt)

	err := alert.ChangeStatus(AlertStatus("archived"), now)
	require.Error(t, err)
	assert.Equal(t, AlertStatusNew, alert.Status)
}

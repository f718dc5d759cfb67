package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
)

var day1 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func tx(clientID id.ClientID, typ models.TransactionType, amount, currency string, at time.Time) models.Transaction {
	return models.Transaction{
		ID:         id.NewTransactionID(),
		ClientID:   clientID,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
		OccurredAt: at,
	}
}

func TestSameDayTotal(t *testing.T) {
	client := id.NewClientID()
	other := id.NewClientID()

	history := []models.Transaction{
		tx(client, models.TransactionTypeDeposit, "10000", "BRL", day1),
		tx(client, models.TransactionTypeDeposit, "5000", "BRL", day1.Add(time.Hour)),
		tx(client, models.TransactionTypeDeposit, "700", "USD", day1.Add(2*time.Hour)),
		tx(client, models.TransactionTypeDeposit, "999", "BRL", day1.AddDate(0, 0, -1)),
		tx(other, models.TransactionTypeDeposit, "123", "BRL", day1),
	}
	candidate := tx(client, models.TransactionTypeDeposit, "5000.01", "BRL", day1.Add(3*time.Hour))

	t.Run("sums same client, day and currency including candidate", func(t *testing.T) {
		got := SameDayTotal(client, "BRL", "2024-05-01", history, candidate)
		assert.True(t, got.Equal(decimal.RequireFromString("20000.01")), got.String())
	})

	t.Run("never mixes currencies", func(t *testing.T) {
		got := SameDayTotal(client, "USD", "2024-05-01", history, candidate)
		assert.True(t, got.Equal(decimal.RequireFromString("700")), got.String())

		got = SameDayTotal(client, "EUR", "2024-05-01", history, candidate)
		assert.True(t, got.IsZero())
	})

	t.Run("currency match is exact", func(t *testing.T) {
		got := SameDayTotal(client, "brl", "2024-05-01", history, candidate)
		assert.True(t, got.IsZero())
	})

	t.Run("is a pure function of its inputs", func(t *testing.T) {
		first := SameDayTotal(client, "BRL", "2024-05-01", history, candidate)
		second := SameDayTotal(client, "BRL", "2024-05-01", history, candidate)
		assert.True(t, first.Equal(second))
		assert.Len(t, history, 5)
	})

	t.Run("candidate already in history is counted once", func(t *testing.T) {
		stored := append(append([]models.Transaction{}, history...), candidate)
		got := SameDayTotal(client, "BRL", "2024-05-01", stored, candidate)
		assert.True(t, got.Equal(decimal.RequireFromString("20000.01")), got.String())
	})

	t.Run("empty history yields the candidate alone", func(t *testing.T) {
		got := SameDayTotal(client, "BRL", "2024-05-01", nil, candidate)
		assert.True(t, got.Equal(candidate.Amount))
	})
}

func TestSameDayTransfersOfType(t *testing.T) {
	client := id.NewClientID()
	late := tx(client, models.TransactionTypeTransfer, "3200", "BRL", day1.Add(5*time.Hour))
	early := tx(client, models.TransactionTypeTransfer, "3500", "BRL", day1)
	history := []models.Transaction{
		late,
		early,
		tx(client, models.TransactionTypeDeposit, "100", "BRL", day1.Add(time.Hour)),
		tx(client, models.TransactionTypeTransfer, "50", "BRL", day1.AddDate(0, 0, 1)),
	}
	candidate := tx(client, models.TransactionTypeTransfer, "3800", "BRL", day1.Add(2*time.Hour))

	got := SameDayTransfersOfType(client, models.TransactionTypeTransfer, "2024-05-01", history, candidate)
	require.Len(t, got, 3)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, candidate.ID, got[1].ID)
	assert.Equal(t, late.ID, got[2].ID)

	again := SameDayTransfersOfType(client, models.TransactionTypeTransfer, "2024-05-01", history, candidate)
	assert.Equal(t, got, again)
}

func TestBuild(t *testing.T) {
	client := id.NewClientID()

	t.Run("scopes to candidate client and day", func(t *testing.T) {
		history := []models.Transaction{
			tx(client, models.TransactionTypeTransfer, "100", "BRL", day1),
			tx(client, models.TransactionTypeTransfer, "100", "USD", day1.Add(time.Minute)),
			tx(client, models.TransactionTypeTransfer, "100", "BRL", day1.AddDate(0, 0, -1)),
			tx(id.NewClientID(), models.TransactionTypeTransfer, "100", "BRL", day1),
		}
		candidate := tx(client, models.TransactionTypeDeposit, "50", "BRL", day1.Add(time.Hour))

		agg := Build(candidate, history)
		assert.Equal(t, "2024-05-01", agg.Day())
		assert.Equal(t, 3, agg.SameDayCount())
		assert.True(t, agg.SameDayTotal("BRL").Equal(decimal.RequireFromString("150")))
		assert.True(t, agg.SameDayTotal("USD").Equal(decimal.RequireFromString("100")))
		assert.Len(t, agg.SameDayOfType(models.TransactionTypeTransfer), 2)
		assert.Len(t, agg.SameDayOfType(models.TransactionTypeDeposit), 1)
	})

	t.Run("agrees with the standalone functions", func(t *testing.T) {
		history := []models.Transaction{
			tx(client, models.TransactionTypeTransfer, "10", "EUR", day1),
			tx(client, models.TransactionTypeWithdrawal, "20", "EUR", day1.Add(time.Minute)),
		}
		candidate := tx(client, models.TransactionTypeTransfer, "30", "EUR", day1.Add(time.Hour))
		agg := Build(candidate, history)

		assert.True(t, agg.SameDayTotal("EUR").Equal(SameDayTotal(client, "EUR", candidate.Day(), history, candidate)))
		assert.Equal(t,
			SameDayTransfersOfType(client, models.TransactionTypeTransfer, candidate.Day(), history, candidate),
			agg.SameDayOfType(models.TransactionTypeTransfer))
	})

	t.Run("nil history does not panic", func(t *testing.T) {
		candidate := tx(client, models.TransactionTypeTransfer, "30", "EUR", day1)
		agg := Build(candidate, nil)
		assert.Equal(t, 1, agg.SameDayCount())
	})

	t.Run("day follows the stored offset, not UTC", func(t *testing.T) {
		saoPaulo := time.FixedZone("-03", -3*60*60)
		lateEvening := time.Date(2024, 5, 1, 23, 30, 0, 0, saoPaulo)
		nextMorningUTC := time.Date(2024, 5, 2, 1, 0, 0, 0, time.UTC)

		history := []models.Transaction{tx(client, models.TransactionTypeDeposit, "100", "BRL", nextMorningUTC)}
		candidate := tx(client, models.TransactionTypeDeposit, "100", "BRL", lateEvening)

		agg := Build(candidate, history)
		assert.Equal(t, "2024-05-01", agg.Day())
		assert.Equal(t, 1, agg.SameDayCount())
	})
}

func TestTotalsByCurrency(t *testing.T) {
	client := id.NewClientID()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	totals := TotalsByCurrency([]models.Transaction{
		tx(client, models.TransactionTypeDeposit, "100.10", "BRL", at),
		tx(client, models.TransactionTypeTransfer, "0.90", "BRL", at.AddDate(0, 0, 3)),
		tx(client, models.TransactionTypeDeposit, "5", "USD", at),
	})

	require.Len(t, totals, 2)
	assert.Equal(t, "101", totals["BRL"].String())
	assert.Equal(t, "5", totals["USD"].String())
	assert.Empty(t, TotalsByCurrency(nil))
}

func TestBreakdownByType(t *testing.T) {
	client := id.NewClientID()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("counts and totals each type per currency", func(t *testing.T) {
		breakdown := BreakdownByType([]models.Transaction{
			tx(client, models.TransactionTypeDeposit, "100.10", "BRL", at),
			tx(client, models.TransactionTypeDeposit, "5", "USD", at),
			tx(client, models.TransactionTypeDeposit, "0.90", "BRL", at.AddDate(0, 0, 1)),
			tx(client, models.TransactionTypeTransfer, "30", "BRL", at),
		})

		deposit := breakdown[models.TransactionTypeDeposit]
		assert.Equal(t, 3, deposit.Count)
		require.Len(t, deposit.TotalsByCurrency, 2)
		assert.Equal(t, "101", deposit.TotalsByCurrency["BRL"].String())
		assert.Equal(t, "5", deposit.TotalsByCurrency["USD"].String())

		transfer := breakdown[models.TransactionTypeTransfer]
		assert.Equal(t, 1, transfer.Count)
		assert.Equal(t, "30", transfer.TotalsByCurrency["BRL"].String())
	})

	t.Run("types without activity are present and empty", func(t *testing.T) {
		breakdown := BreakdownByType(nil)

		require.Len(t, breakdown, 3)
		for _, typ := range []models.TransactionType{
			models.TransactionTypeDeposit,
			models.TransactionTypeWithdrawal,
			models.TransactionTypeTransfer,
		} {
			assert.Zero(t, breakdown[typ].Count)
			assert.NotNil(t, breakdown[typ].TotalsByCurrency)
			assert.Empty(t, breakdown[typ].TotalsByCurrency)
		}
	})
}

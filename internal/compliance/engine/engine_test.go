package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/policy"
	"txwatch/internal/compliance/rules"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
)

// spyRule always fires and records how often it was consulted.
type spyRule struct {
	name      string
	accepts   int
	evaluates int
}

func (r *spyRule) Name() string { return r.name }

func (r *spyRule) Accepts(models.Transaction, models.Client) bool {
	r.accepts++
	return true
}

func (r *spyRule) Evaluate(models.Transaction, models.Client, *aggregate.Aggregates) *rules.Finding {
	r.evaluates++
	return &rules.Finding{Severity: models.SeverityLow, Description: "spy"}
}

type EngineSuite struct {
	suite.Suite
	now    time.Time
	day    time.Time
	brazil models.Client
	panama models.Client
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.day = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.brazil = models.Client{ID: id.NewClientID(), Name: "Ana", Country: "Brazil"}
	s.panama = models.Client{ID: id.NewClientID(), Name: "Luis", Country: "Panama"}
}

func (s *EngineSuite) newEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return s.now })}, opts...)
	e, err := New(policy.Default(), opts...)
	s.Require().NoError(err)
	return e
}

func (s *EngineSuite) tx(client models.Client, typ models.TransactionType, amount, currency string, offset time.Duration) models.Transaction {
	return models.Transaction{
		ID:         id.NewTransactionID(),
		ClientID:   client.ID,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
		OccurredAt: s.day.Add(offset),
	}
}

func (s *EngineSuite) ruleNames(alerts []models.Alert) []string {
	var names []string
	for _, a := range alerts {
		names = append(names, a.Rule)
	}
	return names
}

// =============================================================================
// Construction
// =============================================================================

func (s *EngineSuite) TestNew() {
	s.Run("invalid policy fails construction", func() {
		cfg := policy.Default()
		cfg.DailyLimits["BRL"] = decimal.NewFromInt(-1)
		_, err := New(cfg)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("default registry order", func() {
		e := s.newEngine()
		s.Equal([]string{rules.NameDailyLimit, rules.NameHighRiskCountry, rules.NameStructuring}, e.RuleNames())
	})

	s.Run("engine is isolated from later policy edits", func() {
		cfg := policy.Default()
		e, err := New(cfg)
		s.Require().NoError(err)
		cfg.DailyLimits["BRL"] = decimal.NewFromInt(1)

		limit, _ := e.Config().LimitFor("BRL")
		s.True(limit.Equal(decimal.NewFromInt(20000)))
	})
}

// =============================================================================
// Daily limit boundary
// =============================================================================

func (s *EngineSuite) TestDailyLimitBoundary() {
	e := s.newEngine()
	history := []models.Transaction{
		s.tx(s.brazil, models.TransactionTypeDeposit, "10000", "BRL", 0),
		s.tx(s.brazil, models.TransactionTypeDeposit, "5000", "BRL", time.Hour),
	}

	s.Run("exactly at the limit raises nothing", func() {
		res, err := e.Evaluate(s.tx(s.brazil, models.TransactionTypeDeposit, "5000.00", "BRL", 2*time.Hour), &s.brazil, history)
		s.Require().NoError(err)
		s.Empty(res.Alerts)
	})

	s.Run("a cent over raises a high severity alert", func() {
		candidate := s.tx(s.brazil, models.TransactionTypeDeposit, "5000.01", "BRL", 2*time.Hour)
		res, err := e.Evaluate(candidate, &s.brazil, history)
		s.Require().NoError(err)
		s.Require().Len(res.Alerts, 1)

		alert := res.Alerts[0]
		s.Equal(rules.NameDailyLimit, alert.Rule)
		s.Equal(models.SeverityHigh, alert.Severity)
		s.Equal(models.AlertStatusNew, alert.Status)
		s.Equal(candidate.ID, alert.TransactionID)
		s.Equal(s.brazil.ID, alert.ClientID)
		s.Equal(s.now, alert.RaisedAt, "raised at evaluation time, not transaction time")
		s.Contains(alert.Description, "BRL 20,000.00")
	})
}

// =============================================================================
// High-risk scope and structuring
// =============================================================================

func (s *EngineSuite) TestHighRiskScope() {
	e := s.newEngine()

	res, err := e.Evaluate(s.tx(s.panama, models.TransactionTypeDeposit, "100", "USD", 0), &s.panama, nil)
	s.Require().NoError(err)
	s.Empty(res.Alerts, "deposits never trigger the country rule")

	res, err = e.Evaluate(s.tx(s.brazil, models.TransactionTypeTransfer, "100", "USD", 0), &s.brazil, nil)
	s.Require().NoError(err)
	s.Empty(res.Alerts)

	res, err = e.Evaluate(s.tx(s.panama, models.TransactionTypeTransfer, "100", "USD", 0), &s.panama, nil)
	s.Require().NoError(err)
	s.Equal([]string{rules.NameHighRiskCountry}, s.ruleNames(res.Alerts))
}

func (s *EngineSuite) TestStructuringSequence() {
	e := s.newEngine()
	var history []models.Transaction
	amounts := []string{"3500", "3200", "3800"}

	for i, amount := range amounts {
		candidate := s.tx(s.brazil, models.TransactionTypeTransfer, amount, "BRL", time.Duration(i)*time.Hour)
		res, err := e.Evaluate(candidate, &s.brazil, history)
		s.Require().NoError(err)

		if i < 2 {
			s.Empty(res.Alerts, "transfer %d", i+1)
		} else {
			s.Require().Len(res.Alerts, 1)
			s.Equal(rules.NameStructuring, res.Alerts[0].Rule)
			s.Equal(models.SeverityMedium, res.Alerts[0].Severity)
			s.Contains(res.Alerts[0].Description, "3 transfers")
		}
		history = append(history, res.Transaction)
	}
}

// =============================================================================
// Co-firing and determinism
// =============================================================================

func (s *EngineSuite) TestMultipleRulesFire() {
	e := s.newEngine()
	history := []models.Transaction{
		s.tx(s.panama, models.TransactionTypeTransfer, "30000", "USD", 0),
		s.tx(s.panama, models.TransactionTypeTransfer, "15000", "USD", time.Hour),
	}
	candidate := s.tx(s.panama, models.TransactionTypeTransfer, "6000", "USD", 2*time.Hour)

	res, err := e.Evaluate(candidate, &s.panama, history)
	s.Require().NoError(err)
	s.Equal([]string{rules.NameDailyLimit, rules.NameHighRiskCountry, rules.NameStructuring}, s.ruleNames(res.Alerts))
	for _, a := range res.Alerts {
		s.Equal(candidate.ID, a.TransactionID)
	}
	s.NotEqual(res.Alerts[0].ID, res.Alerts[1].ID)

	s.Run("same inputs give the same alert set", func() {
		again, err := e.Evaluate(candidate, &s.panama, history)
		s.Require().NoError(err)
		s.Equal(s.ruleNames(res.Alerts), s.ruleNames(again.Alerts))
		for i := range res.Alerts {
			s.Equal(res.Alerts[i].Severity, again.Alerts[i].Severity)
			s.Equal(res.Alerts[i].Description, again.Alerts[i].Description)
		}
	})

	s.Run("candidate already stored in history is counted once", func() {
		withSelf := append(append([]models.Transaction{}, history...), candidate)
		again, err := e.Evaluate(candidate, &s.panama, withSelf)
		s.Require().NoError(err)
		s.Len(again.Alerts, 3)
		s.Contains(again.Alerts[2].Description, "3 transfers")
	})
}

func (s *EngineSuite) TestIDAssignment() {
	seq := []uuid.UUID{uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), uuid.MustParse("00000000-0000-0000-0000-0000000000a2")}
	next := 0
	e := s.newEngine(WithIDGenerator(func() uuid.UUID {
		u := seq[next]
		next++
		return u
	}))

	candidate := s.tx(s.panama, models.TransactionTypeTransfer, "10", "EUR", 0)
	candidate.ID = id.TransactionID{}
	res, err := e.Evaluate(candidate, &s.panama, nil)
	s.Require().NoError(err)
	s.Equal(id.TransactionID(seq[0]), res.Transaction.ID)
	s.Require().Len(res.Alerts, 1)
	s.Equal(id.AlertID(seq[1]), res.Alerts[0].ID)
	s.Equal(res.Transaction.ID, res.Alerts[0].TransactionID)
}

// =============================================================================
// Validation precedes rules
// =============================================================================

func (s *EngineSuite) TestValidationPrecedesRules() {
	spy := &spyRule{name: "spy"}
	reg := rules.NewRegistry()
	s.Require().NoError(reg.Register(spy))
	e := s.newEngine(WithRegistry(reg))

	cases := []struct {
		name   string
		mutate func(*models.Transaction) *models.Client
	}{
		{"negative amount", func(tx *models.Transaction) *models.Client {
			tx.Amount = decimal.NewFromInt(-5)
			return &s.brazil
		}},
		{"zero amount", func(tx *models.Transaction) *models.Client {
			tx.Amount = decimal.Zero
			return &s.brazil
		}},
		{"missing client id", func(tx *models.Transaction) *models.Client {
			tx.ClientID = id.ClientID{}
			return &s.brazil
		}},
		{"unknown client", func(tx *models.Transaction) *models.Client {
			return nil
		}},
		{"client mismatch", func(tx *models.Transaction) *models.Client {
			return &s.panama
		}},
		{"unknown type", func(tx *models.Transaction) *models.Client {
			tx.Type = "wire"
			return &s.brazil
		}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			candidate := s.tx(s.brazil, models.TransactionTypeTransfer, "100", "BRL", 0)
			client := tc.mutate(&candidate)

			res, err := e.Evaluate(candidate, client, nil)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Empty(res.Alerts)
		})
	}
	s.Zero(spy.accepts, "no rule may run for an invalid transaction")
	s.Zero(spy.evaluates)

	s.Run("valid transaction reaches the spy", func() {
		res, err := e.Evaluate(s.tx(s.brazil, models.TransactionTypeDeposit, "1", "BRL", 0), &s.brazil, nil)
		s.Require().NoError(err)
		s.Len(res.Alerts, 1)
		s.Equal(1, spy.evaluates)
	})
}

func (s *EngineSuite) TestNaNAmountRejectedAtParse() {
	_, err := models.ParseAmount("NaN")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

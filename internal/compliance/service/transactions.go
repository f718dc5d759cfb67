package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"txwatch/internal/compliance/engine"
	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
	audit "txwatch/pkg/platform/audit"
	"txwatch/pkg/platform/sentinel"
)

// SubmitTransactionCommand carries a candidate transaction. Amount stays a
// string until parsed so that no precision is lost at the boundary. An empty
// currency defaults to BRL and a zero OccurredAt to the request time.
type SubmitTransactionCommand struct {
	ClientID     id.ClientID
	Type         string
	Amount       string
	Currency     string
	Counterparty string
	OccurredAt   time.Time
}

// DefaultCurrency applies when a submission names no currency.
const DefaultCurrency = "BRL"

// EvaluationResult is a persisted transaction with the alerts raised for it
// by this evaluation.
type EvaluationResult struct {
	Transaction models.Transaction
	Alerts      []models.Alert
}

func (s *Service) SubmitTransaction(ctx context.Context, cmd SubmitTransactionCommand) (*EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.SubmitTransaction",
		trace.WithAttributes(attribute.String("client_id", cmd.ClientID.String())))
	var err error
	defer func() { endSpan(span, err) }()

	candidate, err := s.parseCandidate(ctx, cmd)
	if err != nil {
		s.metrics.IncrementValidationFailure()
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, candidate.ClientID)
	if err != nil {
		return nil, wrapInternal(err, "failed to serialize client evaluation")
	}
	defer unlock()

	client, history, err := s.loadContext(ctx, candidate)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			s.metrics.IncrementValidationFailure()
		}
		return nil, err
	}

	result, err := s.evaluate(candidate, client, history)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		tx := result.Transaction
		if err := s.transactions.Create(ctx, &tx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store transaction")
		}
		if err := s.emitAudit(ctx, audit.Event{
			Action:        string(audit.EventTransactionSubmitted),
			ClientID:      tx.ClientID,
			TransactionID: tx.ID,
			Subject:       string(tx.Type),
			Detail:        tx.Currency + " " + tx.Amount.String(),
		}); err != nil {
			return err
		}
		return s.storeAlerts(ctx, result.Alerts)
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to store evaluation")
	}

	s.afterEvaluation(ctx, result)
	span.SetAttributes(attribute.Int("alerts", len(result.Alerts)))
	return &EvaluationResult{Transaction: result.Transaction, Alerts: result.Alerts}, nil
}

// ReevaluateTransaction runs the rules again for a stored transaction against
// the history stored before it. Alerts already raised for a rule on this
// transaction are never raised again.
func (s *Service) ReevaluateTransaction(ctx context.Context, txID id.TransactionID) (*EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.ReevaluateTransaction",
		trace.WithAttributes(attribute.String("transaction_id", txID.String())))
	var err error
	defer func() { endSpan(span, err) }()

	stored, err := s.transactions.FindByID(ctx, txID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "transaction not found")
			return nil, err
		}
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction")
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, stored.ClientID)
	if err != nil {
		return nil, wrapInternal(err, "failed to serialize client evaluation")
	}
	defer unlock()

	client, history, err := s.loadContext(ctx, *stored)
	if err != nil {
		return nil, err
	}
	// only what was stored before this transaction, backdated arrivals included
	history = slices.DeleteFunc(history, func(t models.Transaction) bool {
		return t.Seq > stored.Seq
	})

	result, err := s.evaluate(*stored, client, history)
	if err != nil {
		return nil, err
	}

	var fresh []models.Alert
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.alerts.ListByTransaction(ctx, stored.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load existing alerts")
		}
		fresh = withoutRaised(result.Alerts, existing)
		s.metrics.IncrementDeduplicated(len(result.Alerts) - len(fresh))
		return s.storeAlerts(ctx, fresh)
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to store evaluation")
	}

	result.Alerts = fresh
	s.afterEvaluation(ctx, result)
	return &EvaluationResult{Transaction: result.Transaction, Alerts: fresh}, nil
}

func (s *Service) ListTransactions(ctx context.Context, clientID id.ClientID) ([]models.Transaction, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	txs, err := s.transactions.ListByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
	}
	return txs, nil
}

func (s *Service) parseCandidate(ctx context.Context, cmd SubmitTransactionCommand) (models.Transaction, error) {
	if cmd.ClientID.IsNil() {
		return models.Transaction{}, dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	amount, err := models.ParseAmount(cmd.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	txType, err := models.ParseTransactionType(cmd.Type)
	if err != nil {
		return models.Transaction{}, err
	}
	currency := models.TrimCurrency(cmd.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	occurredAt := cmd.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.clock(ctx)
	}
	return models.Transaction{
		ID:           id.NewTransactionID(),
		ClientID:     cmd.ClientID,
		Type:         txType,
		Amount:       amount,
		Currency:     currency,
		Counterparty: cmd.Counterparty,
		OccurredAt:   occurredAt,
	}, nil
}

// loadContext fetches the client and the history window around candidate
// concurrently. An unknown client is a validation failure of the candidate.
func (s *Service) loadContext(ctx context.Context, candidate models.Transaction) (*models.Client, []models.Transaction, error) {
	var (
		client  *models.Client
		history []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.clients.FindByID(gctx, candidate.ClientID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, "client_id does not reference an existing client")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
		}
		client = c
		return nil
	})
	g.Go(func() error {
		txs, err := s.transactions.ListByClientBetween(gctx, candidate.ClientID,
			candidate.OccurredAt.Add(-historyWindow), candidate.OccurredAt.Add(historyWindow))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transaction history")
		}
		history = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return client, history, nil
}

func (s *Service) evaluate(candidate models.Transaction, client *models.Client, history []models.Transaction) (engine.Result, error) {
	start := time.Now()
	result, err := s.engine.Evaluate(candidate, client, history)
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			s.metrics.IncrementValidationFailure()
		}
		return engine.Result{}, err
	}
	s.metrics.IncrementEvaluated(string(candidate.Type), candidate.Currency)
	return result, nil
}

func (s *Service) storeAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := s.alerts.CreateMany(ctx, alerts); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "alert already raised for this transaction and rule")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store alerts")
	}
	for _, a := range alerts {
		if err := s.emitAudit(ctx, audit.Event{
			Action:        string(audit.EventAlertRaised),
			ClientID:      a.ClientID,
			TransactionID: a.TransactionID,
			AlertID:       a.ID,
			Subject:       a.Rule,
			Detail:        a.Description,
		}); err != nil {
			return err
		}
	}
	return nil
}

// afterEvaluation runs once the evaluation is durable. Publishing is best
// effort: alerts are already stored and can be replayed from the store.
func (s *Service) afterEvaluation(ctx context.Context, result engine.Result) {
	for _, a := range result.Alerts {
		s.metrics.IncrementAlert(a.Rule, string(a.Severity))
		s.logger.InfoContext(ctx, "compliance alert raised",
			"alert_id", a.ID,
			"client_id", a.ClientID,
			"transaction_id", a.TransactionID,
			"rule", a.Rule,
			"severity", a.Severity,
		)
	}
	if s.publisher == nil || len(result.Alerts) == 0 {
		return
	}
	if err := s.publisher.PublishAlerts(ctx, result.Alerts); err != nil {
		s.metrics.IncrementPublishFailure()
		s.logger.WarnContext(ctx, "failed to publish alerts",
			"transaction_id", result.Transaction.ID,
			"alerts", len(result.Alerts),
			"error", err,
		)
	}
}

// withoutRaised drops alerts whose rule already fired for the transaction.
func withoutRaised(alerts, existing []models.Alert) []models.Alert {
	raised := make(map[models.AlertKey]struct{}, len(existing))
	for _, a := range existing {
		raised[a.Key()] = struct{}{}
	}
	var out []models.Alert
	for _, a := range alerts {
		if _, ok := raised[a.Key()]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

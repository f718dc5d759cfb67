package service

import (
	"context"
	"errors"

	"txwatch/internal/compliance/aggregate"
	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
	audit "txwatch/pkg/platform/audit"
	"txwatch/pkg/platform/sentinel"
)

func (s *Service) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	for _, st := range filter.Statuses {
		if !st.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "invalid alert status %q", st)
		}
	}
	alerts, err := s.alerts.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

func (s *Service) GetAlert(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	a, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load alert")
	}
	return a, nil
}

// UpdateAlertStatus overwrites the review status of an alert. Any transition
// between known statuses is accepted; nothing else on the alert changes.
func (s *Service) UpdateAlertStatus(ctx context.Context, alertID id.AlertID, status string) (*models.Alert, error) {
	next, err := models.ParseAlertStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *models.Alert
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.GetAlert(ctx, alertID)
		if err != nil {
			return err
		}
		previous := a.Status
		if err := a.ChangeStatus(next, s.clock(ctx)); err != nil {
			return err
		}
		if err := s.alerts.UpdateStatus(ctx, a.ID, a.Status, a.UpdatedAt); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "alert not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update alert status")
		}
		updated = a
		return s.emitAudit(ctx, audit.Event{
			Action:        string(audit.EventAlertStatusChanged),
			ClientID:      a.ClientID,
			TransactionID: a.TransactionID,
			AlertID:       a.ID,
			Subject:       a.Rule,
			Detail:        string(previous) + " -> " + string(a.Status),
		})
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to update alert status")
	}

	s.metrics.IncrementStatusChange(string(updated.Status))
	s.logger.InfoContext(ctx, "alert status changed",
		"alert_id", updated.ID,
		"client_id", updated.ClientID,
		"status", updated.Status,
	)
	return updated, nil
}

// ClientReport summarizes a client's transactions and alerts within period.
func (s *Service) ClientReport(ctx context.Context, clientID id.ClientID, period models.ReportPeriod) (*models.ClientReport, error) {
	if !period.From.IsZero() && !period.To.IsZero() && period.To.Before(period.From) {
		return nil, dErrors.New(dErrors.CodeValidation, "report period ends before it starts")
	}

	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	var alertCount int
	if period.IsOpen() {
		txs, err = s.transactions.ListByClient(ctx, clientID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
		}
		alertCount, err = s.alerts.CountByClient(ctx, clientID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count alerts")
		}
	} else {
		all, err := s.transactions.ListByClient(ctx, clientID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
		}
		for _, t := range all {
			if period.Contains(t.OccurredAt) {
				txs = append(txs, t)
			}
		}
		alerts, err := s.alerts.List(ctx, models.AlertFilter{ClientID: &clientID})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
		}
		for _, a := range alerts {
			if period.Contains(a.RaisedAt) {
				alertCount++
			}
		}
	}

	report := &models.ClientReport{
		Client:           *client,
		TotalsByCurrency: aggregate.TotalsByCurrency(txs),
		ByType:           aggregate.BreakdownByType(txs),
		TransactionCount: len(txs),
		AlertCount:       alertCount,
		Transactions:     txs,
	}
	if !period.From.IsZero() {
		report.From = &period.From
	}
	if !period.To.IsZero() {
		report.To = &period.To
	}
	if report.Transactions == nil {
		report.Transactions = []models.Transaction{}
	}
	return report, nil
}

package service

import (
	"context"
	"errors"

	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
	audit "txwatch/pkg/platform/audit"
	"txwatch/pkg/platform/sentinel"
)

// RegisterClientCommand carries onboarding input. Empty risk level and KYC
// status default to low and pending.
type RegisterClientCommand struct {
	Name      string
	Country   string
	RiskLevel string
	KYCStatus string
}

func (s *Service) RegisterClient(ctx context.Context, cmd RegisterClientCommand) (*models.Client, error) {
	risk := models.RiskLevelLow
	if cmd.RiskLevel != "" {
		parsed, err := models.ParseRiskLevel(cmd.RiskLevel)
		if err != nil {
			return nil, err
		}
		risk = parsed
	}
	kyc := models.KYCStatusPending
	if cmd.KYCStatus != "" {
		parsed, err := models.ParseKYCStatus(cmd.KYCStatus)
		if err != nil {
			return nil, err
		}
		kyc = parsed
	}

	client, err := models.NewClient(id.NewClientID(), cmd.Name, cmd.Country, risk, kyc, s.clock(ctx))
	if err != nil {
		// Convert invariant violations to validation errors for API response
		return nil, invariantToValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.clients.Create(ctx, client); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
		}
		return s.emitAudit(ctx, audit.Event{
			Action:   string(audit.EventClientRegistered),
			ClientID: client.ID,
			Subject:  client.Name,
			Detail:   client.Country,
		})
	})
	if err != nil {
		return nil, wrapInternal(err, "failed to register client")
	}

	s.logger.InfoContext(ctx, "client registered",
		"client_id", client.ID,
		"country", client.Country,
		"risk_level", client.RiskLevel,
	)
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return client, nil
}

func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

func invariantToValidation(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

// wrapInternal leaves coded errors untouched and marks anything else internal.
func wrapInternal(err error, message string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

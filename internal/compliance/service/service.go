// Package service owns persistence around the compliance engine: it loads the
// client and history a candidate is evaluated against, serializes evaluations
// per client, stores the transaction with its alerts and hands alerts to
// downstream consumers.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txwatch/internal/compliance/engine"
	"txwatch/internal/compliance/metrics"
	"txwatch/internal/compliance/models"
	id "txwatch/pkg/domain"
	dErrors "txwatch/pkg/domain-errors"
	audit "txwatch/pkg/platform/audit"
	"txwatch/pkg/requestcontext"
)

type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
}

type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	FindByID(ctx context.Context, txID id.TransactionID) (*models.Transaction, error)
	ListByClient(ctx context.Context, clientID id.ClientID) ([]models.Transaction, error)
	ListByClientBetween(ctx context.Context, clientID id.ClientID, from, to time.Time) ([]models.Transaction, error)
}

type AlertStore interface {
	CreateMany(ctx context.Context, alerts []models.Alert) error
	FindByID(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
	ListByTransaction(ctx context.Context, txID id.TransactionID) ([]models.Alert, error)
	List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	UpdateStatus(ctx context.Context, alertID id.AlertID, status models.AlertStatus, updatedAt time.Time) error
	CountByClient(ctx context.Context, clientID id.ClientID) (int, error)
}

// StoreTx groups store writes into one atomic unit.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes evaluations for a client.
type Locker interface {
	Lock(ctx context.Context, clientID id.ClientID) (func(), error)
}

type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []models.Alert) error
	Degraded() bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Evaluator runs the rule set against one candidate.
type Evaluator interface {
	Evaluate(candidate models.Transaction, client *models.Client, history []models.Transaction) (engine.Result, error)
}

// historyWindow bounds the history loaded around a candidate. Calendar days
// follow each timestamp's own offset, so the window must cover the widest
// UTC offsets on both sides of the candidate's day.
const historyWindow = 72 * time.Hour

type Service struct {
	clients        ClientStore
	transactions   TransactionStore
	alerts         AlertStore
	tx             StoreTx
	locker         Locker
	engine         Evaluator
	publisher      AlertPublisher
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithAlertPublisher(publisher AlertPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithClock overrides the request-scoped clock used for registration dates,
// status changes and defaulted transaction times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New wires the service. Stores, the transaction boundary, the locker and the
// evaluator are required.
func New(clients ClientStore, transactions TransactionStore, alerts AlertStore, tx StoreTx, locker Locker, eval Evaluator, opts ...Option) (*Service, error) {
	switch {
	case clients == nil:
		return nil, errors.New("client store is required")
	case transactions == nil:
		return nil, errors.New("transaction store is required")
	case alerts == nil:
		return nil, errors.New("alert store is required")
	case tx == nil:
		return nil, errors.New("store transaction is required")
	case locker == nil:
		return nil, errors.New("locker is required")
	case eval == nil:
		return nil, errors.New("evaluator is required")
	}

	s := &Service{
		clients:      clients,
		transactions: transactions,
		alerts:       alerts,
		tx:           tx,
		locker:       locker,
		engine:       eval,
		logger:       slog.Default(),
		tracer:       otel.Tracer("txwatch/compliance/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PublisherDegraded reports whether alert publishing is currently failing.
func (s *Service) PublisherDegraded() bool {
	return s.publisher != nil && s.publisher.Degraded()
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return s.auditPublisher.Emit(ctx, event)
}

// endSpan records err on span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

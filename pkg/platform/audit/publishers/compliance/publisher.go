// Package compliance writes regulatory audit events synchronously. A failed
// write is returned to the caller, which must abort the operation it was
// recording; no compliance action may commit without its audit row.
package compliance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "txwatch/pkg/domain-errors"
	audit "txwatch/pkg/platform/audit"
)

var (
	errMissingClient = errors.New("audit event has no client")
	errMissingAction = errors.New("audit event has no action")
)

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithMetrics enables emit and failure counters. Without it the publisher
// records nothing.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithClock stamps events that arrive without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit appends event to the audit store and blocks until it is durable.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	switch {
	case event.ClientID.IsNil():
		return dErrors.Wrap(errMissingClient, dErrors.CodeInternal, "invalid compliance event")
	case event.Action == "":
		return dErrors.Wrap(errMissingAction, dErrors.CodeInternal, "invalid compliance event")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	if err != nil {
		p.metrics.IncPersistFailures()
		p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
			"action", event.Action,
			"client_id", event.ClientID,
			"request_id", event.RequestID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "compliance audit persistence failed")
	}
	p.metrics.IncEventsEmitted(event.Action)
	return nil
}

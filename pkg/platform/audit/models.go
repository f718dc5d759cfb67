package audit

import (
	"context"
	"time"

	id "txwatch/pkg/domain"
)

// Event is emitted from domain logic to capture compliance-relevant actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	Action        string
	ClientID      id.ClientID
	TransactionID id.TransactionID
	AlertID       id.AlertID
	// Subject is a human-readable label, e.g. the rule name or client name.
	Subject   string
	Detail    string
	RequestID string
}

type AuditEvent string

const (
	EventClientRegistered     AuditEvent = "client_registered"
	EventTransactionSubmitted AuditEvent = "transaction_submitted"
	EventAlertRaised          AuditEvent = "alert_raised"
	EventAlertStatusChanged   AuditEvent = "alert_status_changed"
)

// Store persists audit events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClient(ctx context.Context, clientID id.ClientID) ([]Event, error)
}

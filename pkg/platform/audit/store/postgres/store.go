package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "txwatch/pkg/domain"
	audit "txwatch/pkg/platform/audit"
	txcontext "txwatch/pkg/platform/tx"
)

// Store implements audit.Store over the audit_events table. Appends join the
// caller's transaction when one is on the context, so an audit row commits
// or rolls back together with the change it records.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_events (action, client_id, transaction_id, alert_id, subject, request_id, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.Action,
		nullUUID(uuid.UUID(event.ClientID)),
		nullUUID(uuid.UUID(event.TransactionID)),
		nullUUID(uuid.UUID(event.AlertID)),
		event.Subject, event.RequestID, event.Detail, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByClient(ctx context.Context, clientID id.ClientID) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT action, client_id, transaction_id, alert_id, subject, request_id, detail, occurred_at
		FROM audit_events WHERE client_id = $1 ORDER BY id
	`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e                     audit.Event
			client, txID, alertID uuid.NullUUID
		)
		if err := rows.Scan(&e.Action, &client, &txID, &alertID, &e.Subject, &e.RequestID, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ClientID = id.ClientID(client.UUID)
		e.TransactionID = id.TransactionID(txID.UUID)
		e.AlertID = id.AlertID(alertID.UUID)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

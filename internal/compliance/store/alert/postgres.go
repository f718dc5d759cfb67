package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/store"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

// PostgresStore persists alerts in PostgreSQL. The alerts_transaction_rule_key
// constraint backs the one-alert-per-(transaction, rule) invariant.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, client_id, transaction_id, rule, severity, status, raised_at, updated_at, description`

// CreateMany inserts the batch inside the caller's transaction when one is
// on ctx, otherwise inside its own.
func (s *PostgresStore) CreateMany(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return store.NewPostgresTx(s.db).RunInTx(ctx, func(ctx context.Context) error {
		conn := store.Conn(ctx, s.db)
		for _, a := range alerts {
			_, err := conn.ExecContext(ctx, `
				INSERT INTO alerts (id, client_id, transaction_id, rule, severity, status, raised_at, updated_at, description)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, uuid.UUID(a.ID), uuid.UUID(a.ClientID), uuid.UUID(a.TransactionID), a.Rule,
				string(a.Severity), string(a.Status), a.RaisedAt, a.UpdatedAt, a.Description)
			if err != nil {
				return store.TranslateUniqueViolation(err, "insert alert")
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, alertID id.AlertID) (*models.Alert, error) {
	row := store.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM alerts WHERE id = $1`, uuid.UUID(alertID))
	a, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find alert: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListByTransaction(ctx context.Context, txID id.TransactionID) ([]models.Alert, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM alerts
		WHERE transaction_id = $1 ORDER BY seq`, uuid.UUID(txID))
}

// List returns alerts matching filter, newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	var (
		where []string
		args  []any
	)
	if filter.ClientID != nil {
		args = append(args, uuid.UUID(*filter.ClientID))
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d::text[])", len(args)))
	}

	query := `SELECT ` + selectColumns + ` FROM alerts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq DESC`
	return s.query(ctx, query, args...)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, alertID id.AlertID, status models.AlertStatus, updatedAt time.Time) error {
	res, err := store.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE alerts SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(alertID), string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert %s: %w", alertID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CountByClient(ctx context.Context, clientID id.ClientID) (int, error) {
	var n int
	err := store.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT count(*) FROM alerts WHERE client_id = $1`, uuid.UUID(clientID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := store.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	var (
		a             models.Alert
		alertID       uuid.UUID
		clientID      uuid.UUID
		transactionID uuid.UUID
		severity      string
		status        string
	)
	if err := row.Scan(&alertID, &clientID, &transactionID, &a.Rule, &severity, &status, &a.RaisedAt, &a.UpdatedAt, &a.Description); err != nil {
		return nil, err
	}
	a.ID = id.AlertID(alertID)
	a.ClientID = id.ClientID(clientID)
	a.TransactionID = id.TransactionID(transactionID)
	a.Severity = models.Severity(severity)
	a.Status = models.AlertStatus(status)
	return &a, nil
}

package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/store"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

// PostgresStore persists transactions in PostgreSQL. The UTC offset of
// OccurredAt is stored next to the instant so reads restore the original
// calendar day. Insertion order comes from the seq column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, client_id, type, amount, currency, counterparty, occurred_at, utc_offset_seconds, seq`

func (s *PostgresStore) Create(ctx context.Context, t *models.Transaction) error {
	_, offset := t.OccurredAt.Zone()
	err := store.Conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO transactions (id, client_id, type, amount, currency, counterparty, occurred_at, utc_offset_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`, uuid.UUID(t.ID), uuid.UUID(t.ClientID), string(t.Type), t.Amount, t.Currency, t.Counterparty, t.OccurredAt, offset).Scan(&t.Seq)
	return store.TranslateUniqueViolation(err, "insert transaction")
}

func (s *PostgresStore) FindByID(ctx context.Context, txID id.TransactionID) (*models.Transaction, error) {
	row := store.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = $1`, uuid.UUID(txID))
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", txID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListByClient(ctx context.Context, clientID id.ClientID) ([]models.Transaction, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM transactions
		WHERE client_id = $1 ORDER BY occurred_at, seq`, uuid.UUID(clientID))
}

func (s *PostgresStore) ListByClientBetween(ctx context.Context, clientID id.ClientID, from, to time.Time) ([]models.Transaction, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM transactions
		WHERE client_id = $1 AND occurred_at BETWEEN $2 AND $3
		ORDER BY occurred_at, seq`, uuid.UUID(clientID), from, to)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := store.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var (
		t        models.Transaction
		txID     uuid.UUID
		clientID uuid.UUID
		txType   string
		amount   decimal.Decimal
		offset   int
	)
	if err := row.Scan(&txID, &clientID, &txType, &amount, &t.Currency, &t.Counterparty, &t.OccurredAt, &offset, &t.Seq); err != nil {
		return nil, err
	}
	t.ID = id.TransactionID(txID)
	t.ClientID = id.ClientID(clientID)
	t.Type = models.TransactionType(txType)
	t.Amount = amount
	t.OccurredAt = t.OccurredAt.In(time.FixedZone("", offset))
	return &t, nil
}

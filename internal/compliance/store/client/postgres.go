package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"txwatch/internal/compliance/models"
	"txwatch/internal/compliance/store"
	id "txwatch/pkg/domain"
	"txwatch/pkg/platform/sentinel"
)

// PostgresStore persists clients in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Client) error {
	_, err := store.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO clients (id, name, country, risk_level, kyc_status, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(c.ID), c.Name, c.Country, string(c.RiskLevel), string(c.KYCStatus), c.RegisteredAt)
	return store.TranslateUniqueViolation(err, "insert client")
}

func (s *PostgresStore) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	row := store.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, country, risk_level, kyc_status, registered_at
		FROM clients WHERE id = $1
	`, uuid.UUID(clientID))
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", clientID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Client, error) {
	rows, err := store.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, country, risk_level, kyc_status, registered_at
		FROM clients ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*models.Client, error) {
	var (
		c        models.Client
		clientID uuid.UUID
		risk     string
		kyc      string
	)
	if err := row.Scan(&clientID, &c.Name, &c.Country, &risk, &kyc, &c.RegisteredAt); err != nil {
		return nil, err
	}
	c.ID = id.ClientID(clientID)
	c.RiskLevel = models.RiskLevel(risk)
	c.KYCStatus = models.KYCStatus(kyc)
	return &c, nil
}

// Package store holds the persistence plumbing shared by the compliance
// stores: the PostgreSQL schema, unique-violation mapping and the
// transactional boundary the service writes through.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"txwatch/pkg/platform/sentinel"
	"txwatch/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// TranslateUniqueViolation maps a PostgreSQL unique violation to
// sentinel.ErrAlreadyUsed and wraps everything else with op.
func TranslateUniqueViolation(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, sentinel.ErrAlreadyUsed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction carried on ctx, or db when there is none.
func Conn(ctx context.Context, db *sql.DB) Execer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return db
}

// PostgresTx runs a unit of work inside a database transaction carried on
// the context, so every store call made with that context joins it.
type PostgresTx struct {
	db *sql.DB
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Run(ctx, t.db, fn)
}

// MemoryTx serializes units of work against the in-memory stores. It gives
// isolation, not rollback; the memory stores validate a whole batch before
// applying it.
type MemoryTx struct {
	mu sync.Mutex
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sav-suite/reclamation-service/internal/persistence"
)

// Querier is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// standalone or inside a TxManager unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB resolves the querier for a context: the ambient transaction when
// one is open, the pool otherwise.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB wraps a pool for repository use.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) querier(ctx context.Context) Querier {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.pool
}

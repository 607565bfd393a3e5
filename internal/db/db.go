// Package db is the query layer over the deals database. It exposes a
// Querier interface so handlers and the worker receive an injectable
// dependency, with *Queries as the lib/pq-backed implementation.
//
// The consume_redemption procedure is owned by the deals database and
// managed outside this repo — this package only invokes it.
package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same query methods
// run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries executes all SQL against the given DBTX.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to a connection pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries scoped to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Package recordstore is a thin id-based row store over database/sql.
//
// Every table exposes insert-returning-id, get-by-id, equality-filtered scans
// and delete-by-id. Each call is atomic on its own and bounded by the store's
// query timeout; callers needing several calls to commit together use
// DB.WithinTx, which carries the transaction in the context.
package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// DB wraps a connection pool with the per-call timeout.
type DB struct {
	db      *sql.DB
	timeout time.Duration
}

// New wraps db. A zero timeout leaves calls bounded only by the caller's context.
func New(db *sql.DB, timeout time.Duration) *DB {
	return &DB{db: db, timeout: timeout}
}

// WithinTx runs fn in a transaction. Tables used with the context passed to fn
// join the transaction; it commits when fn returns nil and rolls back otherwise.
func (d *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin", Table: "tx", Err: err}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Table: "tx", Err: err}
	}
	return nil
}

// Ping checks that the backend is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.db.PingContext(ctx)
}

func (d *DB) executor(ctx context.Context) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

func (d *DB) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

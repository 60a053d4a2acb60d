// Package orm is the SQL runtime behind the SQL record and job stores: a
// dialect-aware Querier over database/sql, transactions, a small query
// builder and join-table helpers.
package orm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rudderlabs/rudder-go-kit/logger"
)

// Querier is the common interface for DB and Tx.
// Stores accept this so that the same code runs inside and outside a
// caller-owned transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	dialect() Dialect
}

// Logger is the interface for query logging.
type Logger interface {
	Log(ctx context.Context, query string, args ...any)
}

// KitLogger logs queries at debug level through a kit logger.
type KitLogger struct {
	L logger.Logger
}

func (k KitLogger) Log(_ context.Context, query string, args ...any) {
	k.L.Debugn("query",
		logger.NewStringField("sql", query),
		logger.NewIntField("args", int64(len(args))),
	)
}

// DB wraps *sql.DB with a Dialect and satisfies Querier.
type DB struct {
	raw    *sql.DB
	d      Dialect
	logger Logger
}

// New wraps a *sql.DB with the given Dialect.
func New(db *sql.DB, d Dialect) *DB {
	return &DB{raw: db, d: d}
}

// Open opens a database with a registered driver and picks the matching
// dialect. The caller imports the driver ("pgx" or "mysql").
func Open(driver, dsn string) (*DB, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	raw, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("orm: open %s: %w", driver, err)
	}
	return New(raw, d), nil
}

// Debug returns a new *DB that logs every query using the given Logger.
// The original DB is not modified.
func (db *DB) Debug(l Logger) *DB {
	return &DB{raw: db.raw, d: db.d, logger: l}
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	logQuery(ctx, db.logger, query, args)
	return db.raw.QueryContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	logQuery(ctx, db.logger, query, args)
	return db.raw.ExecContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error { return db.raw.PingContext(ctx) } //nolint:wrapcheck // thin wrapper

// Transaction executes fn within a transaction.
// If fn returns nil the transaction is committed.
// If fn returns an error or panics the transaction is rolled back.
func (db *DB) Transaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	raw, err := db.raw.BeginTx(ctx, nil)
	if err != nil {
		return err //nolint:wrapcheck // thin wrapper
	}
	tx := &Tx{raw: raw, d: db.d, logger: db.logger}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.raw.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.raw.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.raw.Commit() //nolint:wrapcheck // thin wrapper
}

// Close closes the underlying *sql.DB.
func (db *DB) Close() error { return db.raw.Close() } //nolint:wrapcheck // thin wrapper

func (db *DB) dialect() Dialect { return db.d }

// Tx wraps *sql.Tx with a Dialect and satisfies Querier. It is only
// available inside DB.Transaction, which owns commit and rollback.
type Tx struct {
	raw    *sql.Tx
	d      Dialect
	logger Logger
}

func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	logQuery(ctx, tx.logger, query, args)
	return tx.raw.QueryContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	logQuery(ctx, tx.logger, query, args)
	return tx.raw.ExecContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (tx *Tx) dialect() Dialect { return tx.d }

func logQuery(ctx context.Context, l Logger, query string, args []any) {
	if l != nil {
		l.Log(ctx, query, args...)
	}
}

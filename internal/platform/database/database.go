// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package database owns the single store handle shared by every component.

The handle is constructed once in main, injected into each store and closed
on shutdown. It wraps a [*sql.DB] opened either over a pgx pool (PostgreSQL)
or over modernc.org/sqlite, and records the [query.Dialect] the stores must
speak.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taibuivan/comicvault/internal/platform/config"
	"github.com/taibuivan/comicvault/internal/platform/postgres"
	"github.com/taibuivan/comicvault/internal/platform/sqlite"
	"github.com/taibuivan/comicvault/pkg/query"
)

// DBTX is the subset of [*sql.DB] and [*sql.Tx] the stores need, so a store
// can run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Handle is the shared, explicitly constructed store handle.
type Handle struct {
	DB      *sql.DB
	Dialect query.Dialect

	closeFn func()
}

// Open connects to the configured driver and returns a ready handle.
//
// # Parameters
//   - ctx: Context for the initial connection attempt.
//   - driver: config.DriverPostgres or config.DriverSQLite.
//   - dsn: Postgres URL or SQLite file path.
//   - logger: Structured logger for connection events.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Handle, error) {
	switch driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		db := postgres.OpenDB(pool)
		return &Handle{
			DB:      db,
			Dialect: query.Postgres,
			closeFn: func() {
				_ = db.Close()
				pool.Close()
			},
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{
			DB:      db,
			Dialect: query.SQLite,
			closeFn: func() { _ = db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("database: unsupported driver %q", driver)
}

// New wraps an already opened database. Close closes db.
func New(db *sql.DB, dialect query.Dialect) *Handle {
	return &Handle{
		DB:      db,
		Dialect: dialect,
		closeFn: func() { _ = db.Close() },
	}
}

// Close releases every connection. It is safe to call on a nil handle.
func (handle *Handle) Close() {
	if handle == nil || handle.closeFn == nil {
		return
	}
	handle.closeFn()
}

// Ping verifies the store is reachable.
func (handle *Handle) Ping(ctx context.Context) error {
	return handle.DB.PingContext(ctx)
}

// InTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back otherwise; fn's error is returned unchanged.
func (handle *Handle) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := handle.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit transaction: %w", err)
	}
	return nil
}

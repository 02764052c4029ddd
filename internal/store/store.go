// Package store persists transactions, rules, batches and lookups with bun
// on sqlite or postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/cleared-dev/transakce/internal/config"
)

// Store is the database handle.
type Store struct {
	db *bun.DB
}

// Open connects to the configured database.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	sqldb, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}

	var db *bun.DB
	switch cfg.Driver {
	case config.DriverSQLite:
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case config.DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}
	return &Store{db: db}, nil
}

// openSQL opens a plain database/sql handle for the configured driver.
func openSQL(cfg config.Database) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
		dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.DSN)
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		db.SetMaxOpenConns(1) // sqlite
		db.SetConnMaxLifetime(0)
		return db, nil
	case config.DriverPostgres:
		return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Queries returns queries bound to the database outside any transaction.
func (s *Store) Queries() *Queries {
	return &Queries{db: s.db}
}

// RunInTx runs fn in a database transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, q *Queries) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Queries{db: tx})
	})
}

// Queries runs statements against a database or an open transaction.
type Queries struct {
	db bun.IDB
}

const savepointName = "row"

// Savepoint runs fn inside a savepoint of the current transaction. When fn
// fails, its writes are undone and the transaction stays usable. Failures
// to manage the savepoint itself wrap ErrSavepoint.
func (q *Queries) Savepoint(ctx context.Context, fn func(q *Queries) error) error {
	if _, err := q.db.ExecContext(ctx, "SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("creating savepoint: %w: %w", ErrSavepoint, err)
	}
	if err := fn(q); err != nil {
		if _, rbErr := q.db.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back savepoint: %w: %w", ErrSavepoint, rbErr))
		}
		if _, relErr := q.db.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); relErr != nil {
			return errors.Join(err, fmt.Errorf("releasing savepoint: %w: %w", ErrSavepoint, relErr))
		}
		return err
	}
	if _, err := q.db.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("releasing savepoint: %w: %w", ErrSavepoint, err)
	}
	return nil
}

// Now returns UTC time truncated to seconds.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

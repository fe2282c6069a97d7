// Package sqlstore implements storage.Storage on top of sqlx.
//
// The SQL is written once with ? placeholders and rebound for the driver
// in use, so the same Store serves SQLite and PostgreSQL. Dialect-specific
// schema lives in the sqlite and postgres packages, which open the
// database and hand it to New.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/courses-api/internal/storage"
	"github.com/jmoiron/sqlx"
)

// Store is the sqlx-backed implementation of storage.Storage.
// A single *sqlx.DB is a connection pool and is safe for concurrent use.
type Store struct {
	db *sqlx.DB
}

var _ storage.Storage = (*Store)(nil)

// New wraps db and applies schema, a list of idempotent DDL statements.
func New(ctx context.Context, db *sqlx.DB, schema []string) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("sqlstore.New: apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// notFound turns sql.ErrNoRows into storage.ErrNotFound.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: no %s found with id: %d", storage.ErrNotFound, what, id)
	}
	return err
}

// checkAffected reports ErrNotFound when an UPDATE or DELETE touched no row.
func checkAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no %s found with id: %d", storage.ErrNotFound, what, id)
	}
	return nil
}

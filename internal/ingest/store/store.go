// Package store is the relational side of the import: natural-key upserts,
// lookups and the scoped delete/bulk insert used by single-project ingests.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ConflictError reports a unique-constraint violation on a natural key, typically
// another writer inserting the same row between our lookup and insert.
type ConflictError struct {
	Table string
	Key   string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s (%s): %v", e.Table, e.Key, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Store wraps a database handle (or a transaction on it). It never opens or
// closes connections itself.
type Store struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// New returns a Store over an already opened handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sqlx.DB { return s.db }

// Driver returns the database/sql driver name.
func (s *Store) Driver() string { return s.db.DriverName() }

// WithTx runs fn against a Store bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Count returns the number of rows in table. Table names are never user input.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, s.q, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	return n, nil
}

func (s *Store) rebind(q string) string { return s.q.Rebind(q) }

func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It creates the
// parent directories and runs migrations automatically.
//
// The database is opened in WAL mode with a busy timeout so concurrent
// administrators serialize at the driver instead of failing fast; uniqueness
// races then resolve at the constraint, which is the error signal the engine
// translates. Transactions take the write lock at BEGIN (_txlock=immediate):
// the store's mutations read before they write, and a deferred transaction
// whose snapshot went stale would fail its lock upgrade with SQLITE_BUSY
// instead of waiting, so the loser of a race would see a driver error rather
// than reaching the constraint.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// now returns the current unix timestamp. Swappable in tests.
var now = func() int64 { return time.Now().Unix() }

// translateConstraint maps a SQLite unique-constraint violation to the
// engine error for the constraint that fired. Any other error passes
// through unchanged.
func translateConstraint(err error) error {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
	default:
		return err
	}

	msg := serr.Error()
	switch {
	case strings.Contains(msg, "memberships.group_id, memberships.position"):
		return models.ErrPositionTaken
	case strings.Contains(msg, "cycles.group_id, cycles.cycle_number"):
		return models.ErrDuplicateCycleNumber
	case strings.Contains(msg, "contributions.cycle_id"):
		return models.ErrDuplicateContribution
	case strings.Contains(msg, "payouts.cycle_id"):
		return models.ErrDuplicatePayout
	case strings.Contains(msg, "clients.email"):
		return fmt.Errorf("%w: email already registered", models.ErrValidation)
	}
	return err
}

// nullString maps "" to SQL NULL so optional unique columns (clients.email)
// do not collide on the empty string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt64 maps a nil pointer to SQL NULL.
func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

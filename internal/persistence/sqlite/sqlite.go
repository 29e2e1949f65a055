// Package sqlite implements the persistence repositories on top of a SQLite
// database accessed through the modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/community-roster/internal/persistence"
)

const (
	timestampFormat = time.RFC3339
	dateFormat      = "2006-01-02"
)

// Store owns the database handle shared by the repository implementations.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by dsn and enables foreign
// key enforcement.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: empty dsn")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}

	// modernc.org/sqlite serialises writes; a single connection avoids
	// SQLITE_BUSY contention between pooled handles.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the raw handle for callers that need direct access, such as
// test harnesses.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		university TEXT NOT NULL DEFAULT '',
		course TEXT NOT NULL DEFAULT '',
		birth_date TEXT,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS member_roles (
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		PRIMARY KEY (member_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS duties (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		date TEXT NOT NULL,
		starts_at TEXT,
		notes TEXT,
		creator_id TEXT NOT NULL REFERENCES members(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS duty_assignees (
		duty_id TEXT NOT NULL REFERENCES duties(id) ON DELETE CASCADE,
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		PRIMARY KEY (duty_id, member_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS message_templates (
		name TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_duties_category_date ON duties(category, date)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_member ON sessions(member_id)`,
}

// Migrate applies the embedded schema statements. Statements are idempotent
// so repeated invocations are safe.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite: store not initialised")
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return persistence.ErrAlreadyExists
	}
	if strings.Contains(msg, "constraint failed") {
		return persistence.ErrConstraintViolation
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse %s: %w", column, err)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(value sql.NullString, column string) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String, column)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

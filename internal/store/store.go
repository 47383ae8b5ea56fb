// Package store is the storage engine: it owns the single SQLite file,
// configures WAL and the bounded lock wait, and wraps every multi-step
// operation in one transaction. It holds no business state.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jaakkos/blackboard/internal/domain"
)

const schemaVersion = 1

// json_valid CHECK constraints make syntactically-invalid tags/refs a hard
// storage error, not just an application-level one.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	current_task TEXT NOT NULL DEFAULT '',
	progress INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'idle',
	blockers TEXT,
	last_seen TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	from_agent TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]' CHECK (json_valid(tags)),
	priority TEXT NOT NULL DEFAULT 'normal',
	in_reply_to INTEGER,
	refs TEXT NOT NULL DEFAULT '[]' CHECK (json_valid(refs)),
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	produced_by TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	version TEXT,
	refs TEXT NOT NULL DEFAULT '[]' CHECK (json_valid(refs)),
	created_at TEXT NOT NULL
);
`

const indexes = `
CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_agent);
CREATE INDEX IF NOT EXISTS idx_messages_reply ON messages(in_reply_to);
CREATE INDEX IF NOT EXISTS idx_artifacts_producer ON artifacts(produced_by);
CREATE INDEX IF NOT EXISTS idx_agents_last_seen ON agents(last_seen);
`

// Store wraps the shared SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating parent dirs and schema as needed) the database at
// path. Initialization is idempotent: re-running it on an existing store is
// a no-op beyond verifying the schema version marker.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.StorageErr("sqlite mkdir", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, domain.StorageErr("sqlite open", err)
	}
	// A single writer at a time; readers are unaffected under WAL.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, domain.StorageErr("sqlite schema", err)
	}
	if _, err := db.Exec(indexes); err != nil {
		_ = db.Close()
		return nil, domain.StorageErr("sqlite indexes", err)
	}
	if err := ensureVersion(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// ensureVersion records the schema version once; later opens verify it.
func ensureVersion(db *sql.DB) error {
	var v int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return domain.StorageErr("schema version", err)
		}
	case err != nil:
		return domain.StorageErr("schema version", err)
	case v > schemaVersion:
		return domain.StorageErr("schema version", fmt.Errorf("database schema v%d is newer than this binary (v%d)", v, schemaVersion))
	}
	return nil
}

// Close releases the database connection. Call on shutdown for clean exit.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Tx runs fn inside one transaction and maps driver failures to the typed
// taxonomy. It does not retry: DatabaseBusy is surfaced for the dispatch
// layer to handle. After a successful commit the WAL is passively
// checkpointed so the log stays bounded across many short-lived processes.
func (s *Store) Tx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return mapErr("begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return mapErr("tx", err)
	}
	if err := tx.Commit(); err != nil {
		return mapErr("commit", err)
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
	return nil
}

// isBusyErr detects a lock-wait timeout from the driver.
func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// mapErr folds a raw error into the typed taxonomy, passing already-typed
// errors through untouched.
func mapErr(context string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if isBusyErr(err) {
		return domain.BusyErr(err)
	}
	return domain.StorageErr(context, err)
}

// formatTime is the stored timestamp representation. All SQL comparisons go
// through datetime() on both sides so format variance cannot break ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a stored timestamp or returns a typed failure.
func parseTime(s, context string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, domain.StorageErr(context, fmt.Errorf("parse timestamp %q: %w", s, err))
	}
	return t, nil
}

// marshalJSON serializes an embedded collection for a JSON column.
func marshalJSON(v any, context string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", domain.StorageErr(context, err)
	}
	return string(b), nil
}

// parseJSON unmarshals an embedded JSON column with context.
func parseJSON(b []byte, v any, context string) error {
	if err := json.Unmarshal(b, v); err != nil {
		return domain.StorageErr(context, err)
	}
	return nil
}

// Package store is the process-shared persistence layer. The main app, the
// widget process and the trigger server all open the same SQLite file;
// SQLite provides the cross-process atomic upsert, but there is no lock
// beyond that — concurrent writers are last-write-wins by design.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/taskdeck/internal/config"
	_ "modernc.org/sqlite"
)

// StorageError signals that the underlying storage is unavailable. Callers
// must degrade (treat as signed out, serve stale data), never crash on it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is a key-value table in the shared database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the shared database path (~/.taskdeck/taskdeck.db).
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskdeck.db"), nil
}

// Open opens or creates the shared database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	// WAL plus a busy timeout so the widget process and the main app can
	// read and write concurrently without stepping on each other.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, &StorageError{Op: "migrate", Err: err}
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the database at the default path.
func OpenDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return Open(path)
}

// Save writes a value, atomically replacing any previous one for the key.
// A concurrent reader sees either the old or the new value, never a gap.
func (s *Store) Save(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

// Get returns the value for a key. A key that was never set is not an
// error: it comes back as (nil, false, nil).
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Op: "get", Err: err}
	}
	return value, true, nil
}

// Delete removes a key. Deleting an absent key succeeds silently.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

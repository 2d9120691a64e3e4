package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// KVStore is durable string storage addressed by a fixed key
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// SQLiteStore keeps key/value pairs in a single SQLite table
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens (and creates if needed) the SQLite store at path
func OpenDatabase(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	return NewSQLiteStore(db, path)
}

// NewSQLiteStore wraps an already opened database and ensures the kv table exists
func NewSQLiteStore(db *sql.DB, path string) (*SQLiteStore, error) {
	// :memory: databases are per-connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(createKVTableSQL); err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("failed to create kv table: %w", err)}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set replaces the value stored under key
func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// Path returns the database location
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ramana-bouquets/internal/domain"

	_ "modernc.org/sqlite"
)

var _ Storage = (*SQLite)(nil)

// SQLite persists keys in a single-table SQLite database on the client.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn, e.g. "file:ramana-local.db".
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// one connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init local store: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Available() bool {
	return s != nil && s.db != nil
}

func (s *SQLite) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value = excluded.value,
	updated_at = excluded.updated_at
`, key, value, time.Now().UTC())
	return err
}

func (s *SQLite) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

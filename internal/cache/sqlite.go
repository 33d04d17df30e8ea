package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const recordsSchema = `CREATE TABLE IF NOT EXISTS records (
	location_key TEXT PRIMARY KEY,
	body         TEXT NOT NULL,
	written_at   TEXT NOT NULL
);`

// SQLiteStore implements Store on a single-file SQLite database, one row per location key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.Exec(recordsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func sqliteDSN(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "attire.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	params := []string{"_busy_timeout=5000", "_journal_mode=WAL"}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// Read implements Store.Read.
func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE location_key = ?`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite read: %w", err)
	}
	return []byte(body), true, nil
}

// Write implements Store.Write. INSERT OR REPLACE overwrites the whole row.
func (s *SQLiteStore) Write(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records(location_key, body, written_at) VALUES(?,?,?)`,
		key, string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite write: %w", err)
	}
	return nil
}

// Ping checks the database connection. Used for health checks.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// Close closes the database. Call during shutdown.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

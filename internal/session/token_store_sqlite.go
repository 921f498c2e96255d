package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// tokenKey is the single well-known row under which the credential is stored.
const tokenKey = "authToken"

// SQLiteTokenStore persists the session token in a local sqlite database so
// the session survives process restarts. Nothing else is persisted; feed and
// profile are always re-fetched.
type SQLiteTokenStore struct {
	db *sql.DB
}

// OpenSQLiteTokenStore opens (or creates) the state database at path.
func OpenSQLiteTokenStore(path string) (*SQLiteTokenStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		token TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare state database: %w", err)
	}

	return &SQLiteTokenStore{db: db}, nil
}

// Save upserts the credential row.
func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	const q = `INSERT INTO credentials (key, token) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET token = excluded.token`
	if _, err := s.db.ExecContext(ctx, q, tokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load retrieves the persisted credential, or ErrNoToken when absent.
func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	const q = `SELECT token FROM credentials WHERE key = ?`
	var token string
	err := s.db.QueryRowContext(ctx, q, tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// Clear removes the credential row.
func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	const q = `DELETE FROM credentials WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, q, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}

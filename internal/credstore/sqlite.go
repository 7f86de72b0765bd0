package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a SQLite database, for deployments where
// credentials should survive a process restart.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
// An empty path opens an in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	trimmed := strings.TrimSpace(path)
	inMemory := false
	if trimmed == "" || trimmed == ":memory:" || strings.Contains(trimmed, "mode=memory") {
		trimmed = ":memory:"
		inMemory = true
	}

	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if !inMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	s := &SQLite{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS credentials (
        identity TEXT PRIMARY KEY,
        access_token TEXT NOT NULL,
        refresh_token TEXT NOT NULL,
        updated_at INTEGER NOT NULL
    );`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Put writes or overwrites the record for rec.Identity.
func (s *SQLite) Put(ctx context.Context, rec Record) error {
	if rec.Identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}

	const query = `INSERT INTO credentials (identity, access_token, refresh_token, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(identity) DO UPDATE SET
            access_token = excluded.access_token,
            refresh_token = excluded.refresh_token,
            updated_at = excluded.updated_at;`
	_, err := s.db.ExecContext(ctx, query,
		rec.Identity, rec.AccessToken, rec.RefreshToken, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// Get returns the record for identity, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, identity string) (Record, error) {
	const query = `SELECT identity, access_token, refresh_token
        FROM credentials WHERE identity = ?;`

	var rec Record
	err := s.db.QueryRowContext(ctx, query, identity).
		Scan(&rec.Identity, &rec.AccessToken, &rec.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query credential: %w", err)
	}
	return rec, nil
}

// Package store persists verification runs in PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables used by the store. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS verifications (
	id           UUID PRIMARY KEY,
	resume_id    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL,
	profile_url  TEXT NOT NULL DEFAULT '',
	result       JSONB,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS verifications_lookup_idx
	ON verifications (resume_id, kind, profile_url, created_at DESC);
`

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates missing tables
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

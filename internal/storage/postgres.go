package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS interview_results (
    id         SMALLINT PRIMARY KEY,
    body       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// resultsRowID pins the table to a single row: only the latest artifact is kept.
const resultsRowID = 1

// PostgresStore keeps the artifact as one JSONB row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against dsn, verifies it and ensures the schema.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createResultsTable); err != nil {
		return fmt.Errorf("storage: create interview_results: %w", err)
	}
	return nil
}

// Save upserts the single results row.
func (s *PostgresStore) Save(ctx context.Context, r *Results) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO interview_results (id, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		resultsRowID, data)
	if err != nil {
		return fmt.Errorf("storage: upsert results: %w", err)
	}
	return nil
}

// Load reads the results row.
func (s *PostgresStore) Load(ctx context.Context) (*Results, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM interview_results WHERE id = $1`, resultsRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: select results: %w", err)
	}
	return Decode(data)
}

// Ping checks the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() { s.pool.Close() }

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prospect-labs/prospector/internal/db"
)

// Compile-time check: Store implements db.Executor.
var _ db.Executor = (*Store)(nil)

// Config holds connection parameters for a Postgres executor.
type Config struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Store implements db.Executor via pgxpool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Postgres executor from a connection URL.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Query executes a statement and returns rows as column -> value maps.
func (s *Store) Query(ctx context.Context, sql string, params ...any) ([]map[string]any, error) {
	rows, err := s.pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Query: sql, Err: err}
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Query: sql, Err: err}
	}
	return out, nil
}

// QueryScalar executes a statement returning a single integer value.
func (s *Store) QueryScalar(ctx context.Context, sql string, params ...any) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, sql, params...).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &db.Error{Op: db.OpQueryScalar, Query: sql, Err: db.ErrNoRows}
		}
		return 0, &db.Error{Op: db.OpQueryScalar, Query: sql, Err: err}
	}
	return n, nil
}

// Exec executes a statement without returning rows.
func (s *Store) Exec(ctx context.Context, sql string, params ...any) error {
	if _, err := s.pool.Exec(ctx, sql, params...); err != nil {
		return &db.Error{Op: db.OpExec, Query: sql, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

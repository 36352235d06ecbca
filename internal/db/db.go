package db

import (
	"context"
	"time"
)

// Executor runs parameterized SQL against the relational backend. Query text
// uses $1..$n placeholders; implementations must never interpolate params
// themselves.
type Executor interface {
	// Query executes a statement and returns rows as column -> value maps.
	Query(ctx context.Context, sql string, params ...any) ([]map[string]any, error)
	// QueryScalar executes a statement expected to return a single integer,
	// such as a COUNT.
	QueryScalar(ctx context.Context, sql string, params ...any) (int64, error)
	// Exec executes a statement without returning rows.
	Exec(ctx context.Context, sql string, params ...any) error
	Pinger
	Close()
}

// Store provides key-value operations for the result cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Pinger
	Close()
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

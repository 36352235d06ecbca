package options

import (
	"context"

	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/query"
)

// Compiler builds DISTINCT option plans.
type Compiler interface {
	CompileOptions(ctx context.Context, name string, deps filter.Set) (query.Plan, error)
}

// Repository executes option plans.
type Repository interface {
	Options(ctx context.Context, plan query.Plan, column string, maxOptions int) ([]string, error)
}

// Cache is the single-flight TTL result cache.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

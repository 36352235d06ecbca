package search

import (
	"context"

	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/query"
)

// Repository executes compiled plans against the relational backend.
type Repository interface {
	FetchPage(ctx context.Context, plan query.Plan) ([]map[string]any, error)
	Count(ctx context.Context, plan query.Plan) (int64, error)
}

// Compiler turns a filter set into an executable plan.
type Compiler interface {
	Compile(ctx context.Context, filters filter.Set) (query.Plan, error)
}

// Cache is the single-flight TTL result cache.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

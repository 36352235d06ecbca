package options

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/cache"
	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/domain/schema"
)

// Service serves the valid options of dropdown filters, constrained by the
// values of the filters they depend on. Option lists are cached under keys
// that fold in the dependency version counters, so bumping a counter
// invalidates every dependent list without enumerating old entries.
type Service struct {
	schema   schema.Schema
	compiler Compiler
	repo     Repository
	cache    Cache
	versions *cache.Versions

	maxOptions int
	logger     *zap.Logger
}

// New creates an options service.
func New(
	s schema.Schema,
	compiler Compiler,
	repo Repository,
	optionsCache Cache,
	versions *cache.Versions,
	maxOptions int,
	logger *zap.Logger,
) *Service {
	return &Service{
		schema:     s,
		compiler:   compiler,
		repo:       repo,
		cache:      optionsCache,
		versions:   versions,
		maxOptions: maxOptions,
		logger:     logger,
	}
}

// Options returns the distinct values for a dropdown filter given the
// current values of its upstream filters.
func (s *Service) Options(ctx context.Context, name string, deps filter.Set) ([]string, error) {
	def, ok := s.schema.Definition(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}
	if def.Kind() != filter.MultiSelect {
		return nil, fmt.Errorf("%w: filter %q has no dynamic options", domain.ErrValidation, name)
	}
	if err := s.schema.ValidateSet(deps); err != nil {
		return nil, err
	}

	// Only declared dependencies participate in the key and the predicate,
	// so unrelated filters cannot fragment the cache.
	relevant := make(filter.Set, len(def.DependsOn()))
	for _, dep := range def.DependsOn() {
		if v, ok := deps[dep]; ok && !v.IsEmpty() {
			relevant[dep] = v
		}
	}

	stamped := s.versions.Current(append(def.DependsOn(), name)...)
	key := cache.Key(cache.ScopeOptions, name, relevant, stamped)

	data, hit, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		plan, err := s.compiler.CompileOptions(ctx, name, relevant)
		if err != nil {
			return nil, err
		}
		values, err := s.repo.Options(ctx, plan, def.Column(), s.maxOptions)
		if err != nil {
			return nil, err
		}
		return json.Marshal(values)
	})
	if err != nil {
		return nil, err
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode cached options %s: %w", key, err)
	}
	s.logger.Debug("Options served",
		zap.String("filter", name),
		zap.Bool("cache_hit", hit),
		zap.Int("count", len(values)),
	)
	return values, nil
}

// Invalidate bumps the dependency version for a filter whose value changed.
// Every dropdown that depends on it (and the filter's own option list) gets
// a fresh cache key on the next request.
func (s *Service) Invalidate(name string) (uint64, error) {
	if _, ok := s.schema.Definition(name); !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}
	v := s.versions.Bump(name)
	s.logger.Debug("Dependency version bumped",
		zap.String("filter", name), zap.Uint64("version", v))
	return v, nil
}

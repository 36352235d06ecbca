package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/cache"
	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/domain/schema"
	"github.com/prospect-labs/prospector/internal/query"
)

// Page is one window of filtered results. When the full result set exceeds
// the global cap, Truncated is set and OriginalTotal preserves the uncapped
// count.
type Page struct {
	Rows          []map[string]any `json:"rows"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
	TotalRecords  int64            `json:"total_records"`
	OriginalTotal int64            `json:"original_total"`
	Truncated     bool             `json:"truncated"`
}

// Service orchestrates a search: validate, fingerprint, serve from cache or
// compile + count + window + execute, then populate the cache.
type Service struct {
	schema   schema.Schema
	compiler Compiler
	repo     Repository
	cache    Cache

	maxResults      int
	defaultPageSize int

	queryDuration prometheus.Observer
	logger        *zap.Logger
}

// New creates a search service.
// queryDuration observes backend execution seconds; may be nil.
func New(
	s schema.Schema,
	compiler Compiler,
	repo Repository,
	resultCache Cache,
	maxResults, defaultPageSize int,
	queryDuration prometheus.Observer,
	logger *zap.Logger,
) *Service {
	return &Service{
		schema:          s,
		compiler:        compiler,
		repo:            repo,
		cache:           resultCache,
		maxResults:      maxResults,
		defaultPageSize: defaultPageSize,
		queryDuration:   queryDuration,
		logger:          logger,
	}
}

// Schema returns the filter schema the service validates against.
func (s *Service) Schema() schema.Schema { return s.schema }

// Search returns the requested result page. Invalid filters fail before any
// cache or backend access; identical filter sets within the cache TTL share
// one backend execution.
func (s *Service) Search(ctx context.Context, filters filter.Set, page, pageSize int) (Page, error) {
	if err := s.schema.ValidateSet(filters); err != nil {
		return Page{}, err
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if page < 1 {
		page = 1
	}

	active := filters.Active()
	subject := fmt.Sprintf("page=%d;size=%d", page, pageSize)
	key := cache.Key(cache.ScopeResults, subject, active, nil)

	data, hit, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		result, err := s.execute(ctx, active, page, pageSize)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return Page{}, err
	}

	var result Page
	if err := json.Unmarshal(data, &result); err != nil {
		return Page{}, fmt.Errorf("decode cached page %s: %w", key, err)
	}
	s.logger.Debug("Search served",
		zap.Bool("cache_hit", hit),
		zap.Int("page", result.Page),
		zap.Int64("total", result.TotalRecords),
		zap.Bool("truncated", result.Truncated),
	)
	return result, nil
}

func (s *Service) execute(ctx context.Context, active filter.Set, page, pageSize int) (Page, error) {
	start := time.Now()

	plan, err := s.compiler.Compile(ctx, active)
	if err != nil {
		return Page{}, err
	}

	total, err := s.repo.Count(ctx, plan)
	if err != nil {
		return Page{}, err
	}

	plan, window := query.Paginate(plan, total, page, pageSize, s.maxResults)

	rows, err := s.repo.FetchPage(ctx, plan)
	if err != nil {
		return Page{}, err
	}

	if s.queryDuration != nil {
		s.queryDuration.Observe(time.Since(start).Seconds())
	}
	if window.Truncated {
		s.logger.Info("Result set truncated",
			zap.Int64("original_total", window.OriginalTotal),
			zap.Int("max_results", s.maxResults))
	}

	return Page{
		Rows:          rows,
		Page:          window.Page,
		PageSize:      window.PageSize,
		TotalRecords:  window.Total,
		OriginalTotal: window.OriginalTotal,
		Truncated:     window.Truncated,
	}, nil
}

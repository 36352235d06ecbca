package prospect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/db"
	"github.com/prospect-labs/prospector/internal/query"
)

// junkOptions are known sentinel values that must never surface as dropdown
// options, compared case-insensitively.
var junkOptions = map[string]struct{}{
	"d": {}, "i": {}, "ii": {}, "u": {},
	"none": {}, "null": {}, "[": {}, "]": {}, "": {}, "invalid": {},
}

// Repository executes compiled query plans against the relational backend.
type Repository struct {
	exec   db.Executor
	logger *zap.Logger
}

// New creates a prospect repository.
func New(exec db.Executor, logger *zap.Logger) *Repository {
	return &Repository{exec: exec, logger: logger}
}

// FetchPage executes the plan's select and returns the rows.
func (r *Repository) FetchPage(ctx context.Context, plan query.Plan) ([]map[string]any, error) {
	sql, params := plan.SelectQuery()
	r.logger.Debug("Executing page query",
		zap.String("sql", sql), zap.Int("params", len(params)))

	rows, err := r.exec.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return rows, nil
}

// Count executes the plan's count query for the same predicates.
func (r *Repository) Count(ctx context.Context, plan query.Plan) (int64, error) {
	sql, params := plan.CountQuery()
	n, err := r.exec.QueryScalar(ctx, sql, params...)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Options executes a DISTINCT option plan, drops junk sentinel values, and
// caps the option count. Values come back sorted.
func (r *Repository) Options(ctx context.Context, plan query.Plan, column string, maxOptions int) ([]string, error) {
	sql, params := plan.SelectQuery()
	rows, err := r.exec.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("fetch options: %w", err)
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		raw, ok := row[column]
		if !ok || raw == nil {
			continue
		}
		val := strings.TrimSpace(fmt.Sprint(raw))
		if _, junk := junkOptions[strings.ToLower(val)]; junk {
			continue
		}
		values = append(values, val)
	}
	sort.Strings(values)

	if maxOptions > 0 && len(values) > maxOptions {
		r.logger.Info("Truncated option list",
			zap.String("column", column),
			zap.Int("total", len(values)), zap.Int("max", maxOptions))
		values = values[:maxOptions]
	}
	return values, nil
}

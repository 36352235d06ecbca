package savedsearch

import (
	"context"
	"fmt"

	"github.com/prospect-labs/prospector/internal/db"
	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
)

// Repository persists named filter sets per user. Blobs go through the
// filter codec on write and on read, so an invalid blob can neither be
// stored nor served.
type Repository struct {
	exec db.Executor
}

// New creates a saved-search repository.
func New(exec db.Executor) *Repository {
	return &Repository{exec: exec}
}

// Save upserts a named search for a user.
func (r *Repository) Save(ctx context.Context, userID, name string, filters filter.Set) error {
	if userID == "" || name == "" {
		return fmt.Errorf("%w: user id and search name are required", domain.ErrValidation)
	}
	blob, err := filter.Marshal(filters)
	if err != nil {
		return err
	}
	const sql = `INSERT INTO saved_searches (user_id, search_name, filters, created_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id, search_name)
DO UPDATE SET filters = EXCLUDED.filters, created_at = NOW()`
	if err := r.exec.Exec(ctx, sql, userID, name, string(blob)); err != nil {
		return fmt.Errorf("save search %q: %w", name, err)
	}
	return nil
}

// List returns the search names saved by a user, newest first.
func (r *Repository) List(ctx context.Context, userID string) ([]string, error) {
	const sql = `SELECT search_name FROM saved_searches WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.exec.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["search_name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Get loads and validates a saved search.
func (r *Repository) Get(ctx context.Context, userID, name string) (filter.Set, error) {
	const sql = `SELECT filters FROM saved_searches WHERE user_id = $1 AND search_name = $2`
	rows, err := r.exec.Query(ctx, sql, userID, name)
	if err != nil {
		return nil, fmt.Errorf("load search %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: saved search %q", domain.ErrNotFound, name)
	}
	blob, ok := rows[0]["filters"].(string)
	if !ok {
		return nil, fmt.Errorf("load search %q: unexpected blob type %T", name, rows[0]["filters"])
	}
	set, err := filter.Unmarshal([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", name, err)
	}
	return set, nil
}

// Delete removes a saved search. Deleting a missing search is not an error.
func (r *Repository) Delete(ctx context.Context, userID, name string) error {
	const sql = `DELETE FROM saved_searches WHERE user_id = $1 AND search_name = $2`
	if err := r.exec.Exec(ctx, sql, userID, name); err != nil {
		return fmt.Errorf("delete search %q: %w", name, err)
	}
	return nil
}

package savedsearch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
)

// --- Mocks ---

type mockExecutor struct {
	rows    []map[string]any
	scalar  int64
	err     error
	lastSQL string
	params  []any
	execs   int
}

func (m *mockExecutor) Query(_ context.Context, sql string, params ...any) ([]map[string]any, error) {
	m.lastSQL = sql
	m.params = params
	return m.rows, m.err
}

func (m *mockExecutor) QueryScalar(_ context.Context, sql string, params ...any) (int64, error) {
	m.lastSQL = sql
	m.params = params
	return m.scalar, m.err
}

func (m *mockExecutor) Exec(_ context.Context, sql string, params ...any) error {
	m.lastSQL = sql
	m.params = params
	m.execs++
	return m.err
}

func (m *mockExecutor) Ping(_ context.Context) error { return nil }
func (m *mockExecutor) Close()                       {}

func TestSave_Upserts(t *testing.T) {
	exec := &mockExecutor{}
	repo := New(exec)

	set := filter.Set{"dba_name": filter.NewText("pizza")}
	if err := repo.Save(context.Background(), "u1", "my search", set); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if exec.execs != 1 {
		t.Fatalf("Exec called %d times, want 1", exec.execs)
	}
	if !strings.Contains(exec.lastSQL, "ON CONFLICT (user_id, search_name)") {
		t.Errorf("sql = %q, want an upsert", exec.lastSQL)
	}
	if exec.params[0] != "u1" || exec.params[1] != "my search" {
		t.Errorf("params = %v", exec.params)
	}
	blob, ok := exec.params[2].(string)
	if !ok || !strings.Contains(blob, `"kind":"text"`) {
		t.Errorf("blob param = %v", exec.params[2])
	}
}

func TestSave_RequiresUserAndName(t *testing.T) {
	repo := New(&mockExecutor{})
	set := filter.Set{}

	if err := repo.Save(context.Background(), "", "name", set); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation for empty user", err)
	}
	if err := repo.Save(context.Background(), "u1", "", set); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation for empty name", err)
	}
}

func TestList(t *testing.T) {
	exec := &mockExecutor{rows: []map[string]any{
		{"search_name": "recent"},
		{"search_name": "older"},
	}}
	repo := New(exec)

	names, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "recent" {
		t.Errorf("names = %v", names)
	}
	if !strings.Contains(exec.lastSQL, "ORDER BY created_at DESC") {
		t.Errorf("sql = %q, want newest first", exec.lastSQL)
	}
}

func TestGet_RoundTripsBlob(t *testing.T) {
	original := filter.Set{
		"dba_name": filter.NewText("pizza"),
		"state":    filter.NewMultiSelect([]string{"NY"}),
	}
	blob, err := filter.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	exec := &mockExecutor{rows: []map[string]any{{"filters": string(blob)}}}
	repo := New(exec)

	got, err := repo.Get(context.Background(), "u1", "my search")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["dba_name"].Text() != "pizza" {
		t.Errorf("filters = %v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockExecutor{})
	_, err := repo.Get(context.Background(), "u1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGet_RejectsCorruptBlob(t *testing.T) {
	exec := &mockExecutor{rows: []map[string]any{{"filters": `{"a":{"kind":"slider"}}`}}}
	repo := New(exec)

	_, err := repo.Get(context.Background(), "u1", "bad")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	exec := &mockExecutor{}
	repo := New(exec)

	if err := repo.Delete(context.Background(), "u1", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !strings.Contains(exec.lastSQL, "DELETE FROM saved_searches") {
		t.Errorf("sql = %q", exec.lastSQL)
	}
}

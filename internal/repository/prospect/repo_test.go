package prospect

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/query"
)

// --- Mocks ---

type mockExecutor struct {
	rows    []map[string]any
	scalar  int64
	err     error
	lastSQL string
	params  []any
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
	return m.err
}

func (m *mockExecutor) Ping(_ context.Context) error { return nil }
func (m *mockExecutor) Close()                       {}

func optionRows(column string, values ...any) []map[string]any {
	rows := make([]map[string]any, 0, len(values))
	for _, v := range values {
		rows = append(rows, map[string]any{column: v})
	}
	return rows
}

func TestFetchPage(t *testing.T) {
	exec := &mockExecutor{rows: []map[string]any{{"dba_name": "Joe's Deli"}}}
	repo := New(exec, zap.NewNop())

	plan := query.Plan{
		Table:      "prospects",
		Columns:    []string{"dba_name"},
		Predicates: []query.Predicate{{SQL: "state = ?", Params: []any{"NY"}}},
		OrderBy:    "dba_name",
		Limit:      25,
	}

	rows, err := repo.FetchPage(context.Background(), plan)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(rows) != 1 || rows[0]["dba_name"] != "Joe's Deli" {
		t.Errorf("rows = %v", rows)
	}
	if !reflect.DeepEqual(exec.params, []any{"NY"}) {
		t.Errorf("params = %v", exec.params)
	}
}

func TestFetchPage_BackendError(t *testing.T) {
	wantErr := errors.New("connection reset")
	repo := New(&mockExecutor{err: wantErr}, zap.NewNop())

	_, err := repo.FetchPage(context.Background(), query.Plan{Table: "t", Columns: []string{"a"}})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestCount(t *testing.T) {
	exec := &mockExecutor{scalar: 450}
	repo := New(exec, zap.NewNop())

	n, err := repo.Count(context.Background(), query.Plan{Table: "prospects", Columns: []string{"id"}})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 450 {
		t.Errorf("Count = %d, want 450", n)
	}
	if exec.lastSQL != "SELECT COUNT(*) FROM prospects" {
		t.Errorf("sql = %q", exec.lastSQL)
	}
}

func TestOptions_DropsJunkSentinels(t *testing.T) {
	exec := &mockExecutor{rows: optionRows("city",
		"Albany", "d", "NONE", "null", "[", "]", "Invalid", "U", "ii", "Buffalo", "  ", nil,
	)}
	repo := New(exec, zap.NewNop())

	got, err := repo.Options(context.Background(), query.Plan{
		Table: "opts", Columns: []string{"city"}, Distinct: true,
	}, "city", 0)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Albany", "Buffalo"}) {
		t.Errorf("Options = %v, want junk filtered out", got)
	}
}

func TestOptions_Sorted(t *testing.T) {
	exec := &mockExecutor{rows: optionRows("city", "Yonkers", "Albany", "Buffalo")}
	repo := New(exec, zap.NewNop())

	got, err := repo.Options(context.Background(), query.Plan{
		Table: "opts", Columns: []string{"city"},
	}, "city", 0)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Albany", "Buffalo", "Yonkers"}) {
		t.Errorf("Options = %v, want sorted", got)
	}
}

func TestOptions_CapsCount(t *testing.T) {
	exec := &mockExecutor{rows: optionRows("city", "a1", "a2", "a3", "a4", "a5")}
	repo := New(exec, zap.NewNop())

	got, err := repo.Options(context.Background(), query.Plan{
		Table: "opts", Columns: []string{"city"},
	}, "city", 3)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d options, want cap of 3", len(got))
	}
}

func TestOptions_NonStringValues(t *testing.T) {
	exec := &mockExecutor{rows: optionRows("sic_code", 5812, 7011)}
	repo := New(exec, zap.NewNop())

	got, err := repo.Options(context.Background(), query.Plan{
		Table: "opts", Columns: []string{"sic_code"},
	}, "sic_code", 0)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"5812", "7011"}) {
		t.Errorf("Options = %v", got)
	}
}

package query

import "testing"

func TestPaginate_Truncation(t *testing.T) {
	plan, window := Paginate(Plan{Table: "t"}, 450, 3, 25, 100)

	if !window.Truncated {
		t.Fatal("expected truncation for 450 records with a 100 cap")
	}
	if window.Total != 100 || window.OriginalTotal != 450 {
		t.Errorf("totals = (%d, %d), want (100, 450)", window.Total, window.OriginalTotal)
	}
	if window.Page != 1 {
		t.Errorf("truncated window serves page %d, want 1", window.Page)
	}
	if plan.Limit != 100 || plan.Offset != 0 {
		t.Errorf("plan window = LIMIT %d OFFSET %d, want LIMIT 100 OFFSET 0", plan.Limit, plan.Offset)
	}
}

func TestPaginate_UnderCap(t *testing.T) {
	plan, window := Paginate(Plan{Table: "t"}, 60, 2, 25, 100)

	if window.Truncated {
		t.Fatal("no truncation expected for 60 records")
	}
	if window.Total != 60 || window.OriginalTotal != 60 {
		t.Errorf("totals = (%d, %d), want (60, 60)", window.Total, window.OriginalTotal)
	}
	if window.Page != 2 || plan.Limit != 25 || plan.Offset != 25 {
		t.Errorf("page=%d LIMIT %d OFFSET %d", window.Page, plan.Limit, plan.Offset)
	}
}

func TestPaginate_ClampsPastEndToLastPage(t *testing.T) {
	_, window := Paginate(Plan{Table: "t"}, 60, 99, 25, 100)
	if window.Page != 3 {
		t.Errorf("page = %d, want 3 (last valid page for 60 records)", window.Page)
	}
}

func TestPaginate_ClampsBelowOne(t *testing.T) {
	plan, window := Paginate(Plan{Table: "t"}, 60, 0, 25, 100)
	if window.Page != 1 || plan.Offset != 0 {
		t.Errorf("page = %d, offset = %d, want page 1 offset 0", window.Page, plan.Offset)
	}
}

func TestPaginate_ZeroTotalServesPageOne(t *testing.T) {
	plan, window := Paginate(Plan{Table: "t"}, 0, 5, 25, 100)
	if window.Page != 1 || window.Total != 0 || window.Truncated {
		t.Errorf("window = %+v, want empty page 1", window)
	}
	if plan.Limit != 25 || plan.Offset != 0 {
		t.Errorf("plan window = LIMIT %d OFFSET %d", plan.Limit, plan.Offset)
	}
}

func TestPaginate_ExactlyAtCap(t *testing.T) {
	_, window := Paginate(Plan{Table: "t"}, 100, 1, 25, 100)
	if window.Truncated {
		t.Error("total equal to the cap must not truncate")
	}
	if window.Total != 100 {
		t.Errorf("total = %d, want 100", window.Total)
	}
}

func TestPaginate_LastPartialPage(t *testing.T) {
	plan, window := Paginate(Plan{Table: "t"}, 55, 3, 25, 100)
	if window.Page != 3 || plan.Offset != 50 || plan.Limit != 25 {
		t.Errorf("page=%d LIMIT %d OFFSET %d, want page 3 LIMIT 25 OFFSET 50",
			window.Page, plan.Limit, plan.Offset)
	}
}

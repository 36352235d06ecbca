package query

// Window describes the slice of the result set a paginated plan returns.
type Window struct {
	Page          int
	PageSize      int
	Total         int64 // record count after the global cap
	OriginalTotal int64 // record count before the cap
	Truncated     bool
}

// Paginate applies the global result cap and page windowing to a compiled
// plan. When the total exceeds maxResults the plan is clamped to the first
// maxResults rows (no offset) and flagged truncated, preserving the original
// total. Otherwise the requested page is clamped to the last valid page; a
// request past the end serves the last page instead of erroring.
func Paginate(plan Plan, total int64, page, pageSize, maxResults int) (Plan, Window) {
	if pageSize <= 0 {
		pageSize = 1
	}

	if maxResults > 0 && total > int64(maxResults) {
		plan.Limit = maxResults
		plan.Offset = 0
		return plan, Window{
			Page:          1,
			PageSize:      maxResults,
			Total:         int64(maxResults),
			OriginalTotal: total,
			Truncated:     true,
		}
	}

	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	plan.Limit = pageSize
	plan.Offset = (page - 1) * pageSize
	return plan, Window{
		Page:          page,
		PageSize:      pageSize,
		Total:         total,
		OriginalTotal: total,
	}
}

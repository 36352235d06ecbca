package query

import (
	"fmt"
	"strings"
)

// Predicate is one WHERE clause fragment with its bound parameters. The
// fragment uses ? placeholders; rendering rewrites them to $1..$n.
type Predicate struct {
	SQL    string
	Params []any
}

// Plan is a compiled, parameterized query: predicates are ANDed at the top
// level, results are ordered by the canonical display column, and the window
// is expressed as LIMIT/OFFSET.
type Plan struct {
	Table      string
	Columns    []string
	Distinct   bool
	Predicates []Predicate
	OrderBy    string
	Limit      int // 0 means no limit
	Offset     int
}

// SelectQuery renders the full select statement and its parameter list.
func (p Plan) SelectQuery() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if p.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(p.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(p.Table)

	params := p.writeWhere(&b)

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(p.OrderBy)
	}
	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)
		if p.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", p.Offset)
		}
	}
	return b.String(), params
}

// CountQuery renders the matching COUNT statement for the same predicates,
// without ordering or windowing.
func (p Plan) CountQuery() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(p.Table)
	params := p.writeWhere(&b)
	return b.String(), params
}

func (p Plan) writeWhere(b *strings.Builder) []any {
	if len(p.Predicates) == 0 {
		return nil
	}
	var params []any
	clauses := make([]string, 0, len(p.Predicates))
	n := 0
	for _, pred := range p.Predicates {
		sql, used := bindPlaceholders(pred.SQL, n+1)
		if used != len(pred.Params) {
			// Predicate construction bug; surface loudly rather than ship a
			// malformed query.
			panic(fmt.Sprintf("predicate %q has %d placeholders but %d params",
				pred.SQL, used, len(pred.Params)))
		}
		n += used
		clauses = append(clauses, sql)
		params = append(params, pred.Params...)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(clauses, " AND "))
	return params
}

// bindPlaceholders rewrites ? placeholders to $start, $start+1, ... and
// returns the rewritten fragment with the count of placeholders used.
func bindPlaceholders(sql string, start int) (string, int) {
	var b strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			fmt.Fprintf(&b, "$%d", start+n)
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}

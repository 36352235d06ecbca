package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/domain/geo"
	"github.com/prospect-labs/prospector/internal/domain/schema"
)

// Resolver turns a free-form address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (geo.Coordinates, error)
}

// Compiler turns an active filter set into a parameterized query plan.
type Compiler struct {
	schema   schema.Schema
	resolver Resolver
}

// New creates a Compiler over the given schema. The resolver is only
// consulted for location filters.
func New(s schema.Schema, resolver Resolver) *Compiler {
	return &Compiler{schema: s, resolver: resolver}
}

// Compile translates the filter set into a plan over the result table.
// Structurally empty values contribute nothing; predicates are emitted in
// schema declaration order so the plan is deterministic. A location filter
// that fails to geocode fails the whole compile.
func (c *Compiler) Compile(ctx context.Context, filters filter.Set) (Plan, error) {
	plan := Plan{
		Table:   c.schema.Table(),
		Columns: schema.ProspectColumns,
		OrderBy: c.schema.DisplayColumn(),
	}

	for _, def := range c.schema.Definitions() {
		v, ok := filters[def.Name()]
		if !ok || v.IsEmpty() {
			continue
		}
		preds, err := c.compileFilter(ctx, def, v)
		if err != nil {
			return Plan{}, err
		}
		plan.Predicates = append(plan.Predicates, preds...)
	}
	return plan, nil
}

// CompileOptions builds the dropdown-option plan for one filter:
// SELECT DISTINCT column ... WHERE column IS NOT NULL plus the predicates of
// the dependent filters. Only text, multi-select, and range dependents
// constrain the options.
func (c *Compiler) CompileOptions(ctx context.Context, name string, deps filter.Set) (Plan, error) {
	def, ok := c.schema.Definition(name)
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}

	plan := Plan{
		Table:      c.schema.OptionsSource(),
		Columns:    []string{def.Column()},
		Distinct:   true,
		OrderBy:    def.Column(),
		Predicates: []Predicate{{SQL: def.Column() + " IS NOT NULL"}},
	}

	for _, depDef := range c.schema.Definitions() {
		if depDef.Name() == name {
			continue
		}
		v, ok := deps[depDef.Name()]
		if !ok || v.IsEmpty() {
			continue
		}
		switch depDef.Kind() {
		case filter.Text, filter.MultiSelect:
			preds, err := c.compileFilter(ctx, depDef, v)
			if err != nil {
				return Plan{}, err
			}
			plan.Predicates = append(plan.Predicates, preds...)
		case filter.Range:
			plan.Predicates = append(plan.Predicates, rangeBetween(depDef.Column(), v)...)
		}
	}
	return plan, nil
}

func (c *Compiler) compileFilter(ctx context.Context, def schema.Definition, v filter.Value) ([]Predicate, error) {
	switch def.Kind() {
	case filter.Text:
		return textPredicates(def.Column(), v), nil
	case filter.MultiSelect:
		return []Predicate{inPredicate(def.Column(), v.Selections())}, nil
	case filter.Range:
		return rangePredicates(def.Column(), v), nil
	case filter.Number:
		return []Predicate{{SQL: def.Column() + " = ?", Params: []any{*v.Number()}}}, nil
	case filter.CheckboxSet:
		return []Predicate{checkboxPredicate(def.Column(), v)}, nil
	case filter.LocationRadius:
		return c.locationPredicates(ctx, def, v)
	}
	return nil, fmt.Errorf("%w: filter %q has unsupported kind %q",
		domain.ErrValidation, def.Name(), def.Kind())
}

// textPredicates emits one LOWER(col) LIKE %token% clause per whitespace
// token; tokens are ANDed.
func textPredicates(column string, v filter.Value) []Predicate {
	tokens := v.Tokens()
	preds := make([]Predicate, 0, len(tokens))
	for _, tok := range tokens {
		preds = append(preds, Predicate{
			SQL:    "LOWER(" + column + ") LIKE ?",
			Params: []any{"%" + tok + "%"},
		})
	}
	return preds
}

func inPredicate(column string, values []string) Predicate {
	marks := make([]string, len(values))
	params := make([]any, len(values))
	for i, val := range values {
		marks[i] = "?"
		params[i] = val
	}
	return Predicate{
		SQL:    column + " IN (" + strings.Join(marks, ",") + ")",
		Params: params,
	}
}

// rangePredicates emits each bound independently.
func rangePredicates(column string, v filter.Value) []Predicate {
	var preds []Predicate
	if min := v.Min(); min != nil {
		preds = append(preds, Predicate{SQL: column + " >= ?", Params: []any{*min}})
	}
	if max := v.Max(); max != nil {
		preds = append(preds, Predicate{SQL: column + " <= ?", Params: []any{*max}})
	}
	return preds
}

// rangeBetween collapses a two-sided range into BETWEEN for option queries.
func rangeBetween(column string, v filter.Value) []Predicate {
	min, max := v.Min(), v.Max()
	switch {
	case min != nil && max != nil:
		return []Predicate{{SQL: column + " BETWEEN ? AND ?", Params: []any{*min, *max}}}
	case min != nil:
		return []Predicate{{SQL: column + " >= ?", Params: []any{*min}}}
	case max != nil:
		return []Predicate{{SQL: column + " <= ?", Params: []any{*max}}}
	}
	return nil
}

// checkboxPredicate ORs one equality sub-condition per checked option into a
// single group. The caller guarantees at least one option is checked.
func checkboxPredicate(column string, v filter.Value) Predicate {
	opts := v.CheckedOptions()
	clauses := make([]string, len(opts))
	params := make([]any, len(opts))
	for i, opt := range opts {
		clauses[i] = column + " = ?"
		params[i] = opt
	}
	return Predicate{
		SQL:    "(" + strings.Join(clauses, " OR ") + ")",
		Params: params,
	}
}

// locationPredicates resolves the address and emits the bounding-box
// pre-filter plus the exact great-circle distance predicate. Coordinates and
// radius are interpolated: they are computed values, never caller-supplied
// text.
func (c *Compiler) locationPredicates(ctx context.Context, def schema.Definition, v filter.Value) ([]Predicate, error) {
	center, err := c.resolver.Resolve(ctx, v.Address())
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", def.Name(), err)
	}

	minLat, maxLat, minLon, maxLon := geo.BoundingBox(center, v.RadiusMiles())
	latCol, lonCol := def.LatColumn(), def.LonColumn()

	box := Predicate{SQL: fmt.Sprintf(
		"%s BETWEEN %s AND %s AND %s BETWEEN %s AND %s",
		latCol, ff(minLat), ff(maxLat), lonCol, ff(minLon), ff(maxLon),
	)}

	lat, lon := ff(center.Latitude), ff(center.Longitude)
	exact := Predicate{SQL: fmt.Sprintf(
		"(%s * 2 * ASIN(SQRT(POWER(SIN(RADIANS(%s - %s) / 2), 2) + "+
			"COS(RADIANS(%s)) * COS(RADIANS(%s)) * POWER(SIN(RADIANS(%s - %s) / 2), 2)))) <= %s",
		ff(geo.EarthRadiusMiles), latCol, lat, lat, latCol, lonCol, lon, ff(v.RadiusMiles()),
	)}

	return []Predicate{box, exact}, nil
}

func ff(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

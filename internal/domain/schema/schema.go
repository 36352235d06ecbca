package schema

import (
	"fmt"
	"regexp"

	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// Definition is an immutable description of one supported filter: its kind,
// backing column, and any declared options or bounds.
type Definition struct {
	name   string
	kind   filter.Kind
	column string

	options []string // MultiSelect / CheckboxSet

	latColumn string // LocationRadius
	lonColumn string

	minRadius float64 // LocationRadius bounds, miles
	maxRadius float64

	dependsOn []string
}

func newDefinition(name string, kind filter.Kind, column string) (Definition, error) {
	if name == "" || !nameRegex.MatchString(name) {
		return Definition{}, fmt.Errorf("filter name %q must match %s", name, nameRegex)
	}
	if column == "" {
		return Definition{}, fmt.Errorf("filter %q: column is required", name)
	}
	return Definition{name: name, kind: kind, column: column}, nil
}

// NewText declares a free-text filter over a column.
func NewText(name, column string) (Definition, error) {
	return newDefinition(name, filter.Text, column)
}

// NewMultiSelect declares a multi-select filter. Options may be empty when
// the valid options are discovered from the backend at runtime.
func NewMultiSelect(name, column string, options []string) (Definition, error) {
	d, err := newDefinition(name, filter.MultiSelect, column)
	if err != nil {
		return Definition{}, err
	}
	d.options = append([]string(nil), options...)
	return d, nil
}

// NewRange declares a numeric range filter over a column.
func NewRange(name, column string) (Definition, error) {
	return newDefinition(name, filter.Range, column)
}

// NewNumber declares a single-value numeric filter over a column.
func NewNumber(name, column string) (Definition, error) {
	return newDefinition(name, filter.Number, column)
}

// NewCheckboxSet declares a checkbox-group filter with its declared options.
func NewCheckboxSet(name, column string, options []string) (Definition, error) {
	if len(options) == 0 {
		return Definition{}, fmt.Errorf("filter %q: checkbox set needs options", name)
	}
	d, err := newDefinition(name, filter.CheckboxSet, column)
	if err != nil {
		return Definition{}, err
	}
	d.options = append([]string(nil), options...)
	return d, nil
}

// NewLocationRadius declares an address + radius filter over latitude and
// longitude columns, with radius bounds in miles.
func NewLocationRadius(name, latColumn, lonColumn string, minRadius, maxRadius float64) (Definition, error) {
	d, err := newDefinition(name, filter.LocationRadius, latColumn)
	if err != nil {
		return Definition{}, err
	}
	if lonColumn == "" {
		return Definition{}, fmt.Errorf("filter %q: longitude column is required", name)
	}
	if minRadius <= 0 || maxRadius < minRadius {
		return Definition{}, fmt.Errorf("filter %q: invalid radius bounds [%v, %v]", name, minRadius, maxRadius)
	}
	d.latColumn = latColumn
	d.lonColumn = lonColumn
	d.minRadius = minRadius
	d.maxRadius = maxRadius
	return d, nil
}

// WithDependencies returns a copy of the definition that declares its valid
// options as dependent on the named upstream filters.
func (d Definition) WithDependencies(names ...string) Definition {
	d.dependsOn = append([]string(nil), names...)
	return d
}

// Name returns the filter name.
func (d Definition) Name() string { return d.name }

// Kind returns the filter kind.
func (d Definition) Kind() filter.Kind { return d.kind }

// Column returns the backing column.
func (d Definition) Column() string { return d.column }

// Options returns a copy of the declared options.
func (d Definition) Options() []string { return append([]string(nil), d.options...) }

// LatColumn returns the latitude column for a location filter.
func (d Definition) LatColumn() string { return d.latColumn }

// LonColumn returns the longitude column for a location filter.
func (d Definition) LonColumn() string { return d.lonColumn }

// RadiusBounds returns the allowed radius interval in miles.
func (d Definition) RadiusBounds() (min, max float64) { return d.minRadius, d.maxRadius }

// DependsOn returns the upstream filter names this filter's options depend on.
func (d Definition) DependsOn() []string { return append([]string(nil), d.dependsOn...) }

// Schema is the static typed description of every supported filter, defined
// once at process start.
type Schema struct {
	table         string
	optionsSource string
	displayColumn string
	defs          map[string]Definition
	order         []string
}

// New validates and creates a Schema. The display column provides the
// canonical result ordering; optionsSource backs dropdown-option queries.
func New(table, optionsSource, displayColumn string, defs ...Definition) (Schema, error) {
	if table == "" || optionsSource == "" {
		return Schema{}, fmt.Errorf("table and options source are required")
	}
	if displayColumn == "" {
		return Schema{}, fmt.Errorf("display column is required")
	}
	byName := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, d := range defs {
		if _, dup := byName[d.name]; dup {
			return Schema{}, fmt.Errorf("duplicate filter name %q", d.name)
		}
		byName[d.name] = d
		order = append(order, d.name)
	}
	for _, d := range defs {
		for _, dep := range d.dependsOn {
			if _, ok := byName[dep]; !ok {
				return Schema{}, fmt.Errorf("filter %q depends on unknown filter %q", d.name, dep)
			}
			if dep == d.name {
				return Schema{}, fmt.Errorf("filter %q depends on itself", d.name)
			}
		}
	}
	return Schema{
		table:         table,
		optionsSource: optionsSource,
		displayColumn: displayColumn,
		defs:          byName,
		order:         order,
	}, nil
}

// Table returns the backing table for result queries.
func (s Schema) Table() string { return s.table }

// OptionsSource returns the table or view backing dropdown-option queries.
func (s Schema) OptionsSource() string { return s.optionsSource }

// DisplayColumn returns the canonical ordering column.
func (s Schema) DisplayColumn() string { return s.displayColumn }

// Definition looks up a filter definition by name.
func (s Schema) Definition(name string) (Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Definitions returns all definitions in declaration order.
func (s Schema) Definitions() []Definition {
	defs := make([]Definition, 0, len(s.order))
	for _, name := range s.order {
		defs = append(defs, s.defs[name])
	}
	return defs
}

// Dependents returns the names of filters whose options depend on the given
// filter, in declaration order.
func (s Schema) Dependents(name string) []string {
	var out []string
	for _, n := range s.order {
		for _, dep := range s.defs[n].dependsOn {
			if dep == name {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Validate checks a single filter value against its definition. It is pure:
// no side effects, no backend access.
func (s Schema) Validate(name string, v filter.Value) error {
	d, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}
	if v.Kind() != d.kind {
		return fmt.Errorf("%w: filter %q expects kind %q, got %q",
			domain.ErrValidation, name, d.kind, v.Kind())
	}
	if v.IsEmpty() {
		return nil
	}
	switch d.kind {
	case filter.Range:
		if min, max := v.Min(), v.Max(); min != nil && max != nil && *min > *max {
			return fmt.Errorf("%w: filter %q: min %v greater than max %v",
				domain.ErrValidation, name, *min, *max)
		}
	case filter.MultiSelect:
		if len(d.options) > 0 {
			if err := checkOptions(name, v.Selections(), d.options); err != nil {
				return err
			}
		}
	case filter.CheckboxSet:
		checked := make([]string, 0, len(v.Checked()))
		for opt := range v.Checked() {
			checked = append(checked, opt)
		}
		if err := checkOptions(name, checked, d.options); err != nil {
			return err
		}
	case filter.LocationRadius:
		if r := v.RadiusMiles(); r < d.minRadius || r > d.maxRadius {
			return fmt.Errorf("%w: filter %q: radius %v outside [%v, %v]",
				domain.ErrValidation, name, r, d.minRadius, d.maxRadius)
		}
	}
	return nil
}

// ValidateSet checks every value in the set against the schema.
func (s Schema) ValidateSet(set filter.Set) error {
	for _, name := range set.Names() {
		if err := s.Validate(name, set[name]); err != nil {
			return err
		}
	}
	return nil
}

func checkOptions(name string, got, declared []string) error {
	valid := make(map[string]struct{}, len(declared))
	for _, opt := range declared {
		valid[opt] = struct{}{}
	}
	for _, opt := range got {
		if _, ok := valid[opt]; !ok {
			return fmt.Errorf("%w: filter %q: unknown option %q", domain.ErrValidation, name, opt)
		}
	}
	return nil
}

package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the structural type of a filter's value.
type Kind string

// Filter kind constants.
const (
	Text           Kind = "text"
	MultiSelect    Kind = "multi_select"
	Range          Kind = "range"
	CheckboxSet    Kind = "checkbox_set"
	LocationRadius Kind = "location_radius"
	Number         Kind = "number"
)

// IsValid checks if the kind is one of the supported filter kinds.
func (k Kind) IsValid() bool {
	switch k {
	case Text, MultiSelect, Range, CheckboxSet, LocationRadius, Number:
		return true
	}
	return false
}

// Value is an immutable tagged union holding one filter's value.
// The zero Value is invalid; use the New* constructors.
type Value struct {
	kind Kind

	text       string
	selections []string
	min, max   *float64
	checked    map[string]bool
	address    string
	radius     float64
	number     *float64
}

// NewText creates a free-text value. The text is trimmed; whitespace-only
// input yields a structurally empty value.
func NewText(text string) Value {
	return Value{kind: Text, text: strings.TrimSpace(text)}
}

// NewMultiSelect creates a multi-select value from the chosen options.
// Blank entries are dropped.
func NewMultiSelect(selections []string) Value {
	kept := make([]string, 0, len(selections))
	for _, s := range selections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return Value{kind: MultiSelect, selections: kept}
}

// NewRange creates a numeric range value. Both bounds are optional, but when
// both are present min must not exceed max. The bounds are never swapped.
func NewRange(min, max *float64) (Value, error) {
	if min != nil && max != nil && *min > *max {
		return Value{}, fmt.Errorf("range min %v greater than max %v", *min, *max)
	}
	return Value{kind: Range, min: min, max: max}, nil
}

// NewCheckboxSet creates a checkbox-group value from option -> checked state.
func NewCheckboxSet(checked map[string]bool) Value {
	cp := make(map[string]bool, len(checked))
	for opt, on := range checked {
		cp[opt] = on
	}
	return Value{kind: CheckboxSet, checked: cp}
}

// NewLocationRadius creates an address + radius value. The address is trimmed;
// a blank address yields a structurally empty value. Radius bounds are
// enforced against the filter definition at validation time.
func NewLocationRadius(address string, radiusMiles float64) Value {
	return Value{kind: LocationRadius, address: strings.TrimSpace(address), radius: radiusMiles}
}

// NewNumber creates a single numeric value.
func NewNumber(n float64) Value {
	v := n
	return Value{kind: Number, number: &v}
}

// Kind returns the value's kind tag.
func (v Value) Kind() Kind { return v.kind }

// Text returns the trimmed free-text content.
func (v Value) Text() string { return v.text }

// Selections returns a copy of the selected options.
func (v Value) Selections() []string {
	return append([]string(nil), v.selections...)
}

// Min returns the lower range bound, or nil if absent.
func (v Value) Min() *float64 { return v.min }

// Max returns the upper range bound, or nil if absent.
func (v Value) Max() *float64 { return v.max }

// Checked returns a copy of the option -> checked map.
func (v Value) Checked() map[string]bool {
	cp := make(map[string]bool, len(v.checked))
	for opt, on := range v.checked {
		cp[opt] = on
	}
	return cp
}

// CheckedOptions returns the checked option names, sorted.
func (v Value) CheckedOptions() []string {
	opts := make([]string, 0, len(v.checked))
	for opt, on := range v.checked {
		if on {
			opts = append(opts, opt)
		}
	}
	sort.Strings(opts)
	return opts
}

// Address returns the trimmed location address.
func (v Value) Address() string { return v.address }

// RadiusMiles returns the location search radius in miles.
func (v Value) RadiusMiles() float64 { return v.radius }

// Number returns the numeric value, or nil if absent.
func (v Value) Number() *float64 { return v.number }

// Tokens splits free text on whitespace into lower-cased match terms.
func (v Value) Tokens() []string {
	fields := strings.Fields(v.text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// IsEmpty reports whether the value is structurally empty. An empty value is
// equivalent to the filter being absent: it contributes no predicate and no
// cache-key material.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case Text:
		return v.text == ""
	case MultiSelect:
		return len(v.selections) == 0
	case Range:
		return v.min == nil && v.max == nil
	case CheckboxSet:
		for _, on := range v.checked {
			if on {
				return false
			}
		}
		return true
	case LocationRadius:
		return v.address == ""
	case Number:
		return v.number == nil
	}
	return true
}

package filter

import "sort"

// Set maps filter name -> value for the filters a caller wants applied.
// An absent entry means "no constraint"; so does a structurally empty value.
type Set map[string]Value

// Active returns a copy of the set with structurally empty values removed.
func (s Set) Active() Set {
	active := make(Set, len(s))
	for name, v := range s {
		if !v.IsEmpty() {
			active[name] = v
		}
	}
	return active
}

// Names returns the filter names in the set, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether the set applies no constraint at all.
func (s Set) IsEmpty() bool {
	for _, v := range s {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

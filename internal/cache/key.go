package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/prospect-labs/prospector/internal/domain/filter"
)

// Scope namespaces cache keys so that, for example, a dropdown-option key can
// never collide with a result-page key.
type Scope string

// Cache key scopes.
const (
	ScopeResults Scope = "results"
	ScopeOptions Scope = "options"
)

// Key builds a deterministic fingerprint for a filter subset. Filters are
// sorted by name and value-canonicalized before hashing, so insertion order
// never changes the key, and a structurally empty value hashes identically to
// an absent one. Dependency version counters, when given, are folded in so
// that bumping a counter invalidates without enumerating old keys. The
// result is the scope prefix plus a 128-bit digest of the canonical string.
func Key(scope Scope, subject string, filters filter.Set, versions map[string]uint64) string {
	var b strings.Builder
	b.WriteString(string(scope))
	b.WriteByte(':')
	b.WriteString(subject)
	b.WriteByte(':')

	for _, name := range filters.Names() {
		v := filters[name]
		if v.IsEmpty() {
			continue
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(canonical(v))
		b.WriteByte(';')
	}

	if len(versions) > 0 {
		names := make([]string, 0, len(versions))
		for name := range versions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteByte('@')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strconv.FormatUint(versions[name], 10))
			b.WriteByte(';')
		}
	}

	sum := md5.Sum([]byte(b.String()))
	return string(scope) + ":" + hex.EncodeToString(sum[:])
}

// canonical serializes one value into its canonical cache-key form.
func canonical(v filter.Value) string {
	switch v.Kind() {
	case filter.Text:
		return v.Text()
	case filter.MultiSelect:
		sel := v.Selections()
		sort.Strings(sel)
		return strings.Join(sel, ",")
	case filter.Range:
		return fb(v.Min()) + "_" + fb(v.Max())
	case filter.CheckboxSet:
		return strings.Join(v.CheckedOptions(), ",")
	case filter.LocationRadius:
		return NormalizeAddress(v.Address()) + ":" + strconv.FormatFloat(v.RadiusMiles(), 'f', -1, 64)
	case filter.Number:
		return fb(v.Number())
	}
	return ""
}

func fb(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// NormalizeAddress trims and case-folds an address for cache identity.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

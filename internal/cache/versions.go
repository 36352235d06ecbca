package cache

import (
	"sync"
	"sync/atomic"
)

// Versions tracks a monotonically increasing counter per filter name.
// Bumping a counter changes every cache key that folds it in, which
// invalidates dependent dropdown-option entries without touching the store.
type Versions struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64
}

// NewVersions creates an empty version registry.
func NewVersions() *Versions {
	return &Versions{counters: make(map[string]*atomic.Uint64)}
}

// Bump atomically increments the counter for a filter name and returns the
// new value. Concurrent increments are never lost.
func (v *Versions) Bump(name string) uint64 {
	return v.counter(name).Add(1)
}

// Current returns the current counter values for the given names. Names that
// were never bumped read as zero.
func (v *Versions) Current(names ...string) map[string]uint64 {
	out := make(map[string]uint64, len(names))
	for _, name := range names {
		out[name] = v.counter(name).Load()
	}
	return out
}

func (v *Versions) counter(name string) *atomic.Uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.counters[name]
	if !ok {
		c = &atomic.Uint64{}
		v.counters[name] = c
	}
	return c
}

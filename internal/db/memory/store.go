package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prospect-labs/prospector/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store is a process-local key-value store with per-key TTL. It is the
// default result-cache driver for single-process deployments.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewStore creates an in-memory store using the real clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates an in-memory store with an injectable clock, so
// TTL expiry can be tested deterministically.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{entries: make(map[string]entry), now: now}
}

// Get retrieves a value by key. Expired entries read as missing.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.entries[key] = entry{value: append([]byte(nil), value...)}
	s.mu.Unlock()
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops all entries.
func (s *Store) Close() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Len returns the number of live entries, sweeping expired ones.
func (s *Store) Len() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	return len(s.entries)
}

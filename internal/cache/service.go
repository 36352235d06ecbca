package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prospect-labs/prospector/internal/db"
)

// Service is the TTL result cache. Reads on unrelated keys never block each
// other, and population of the same key is single-flight: concurrent misses
// on one fingerprint run the compute function exactly once and share its
// result.
type Service struct {
	store      db.Store
	ttl        time.Duration
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a cache service over a key-value store.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"); may be nil.
func New(store db.Store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// GetOrCompute returns the cached value for key, or runs compute once and
// stores its result with the configured TTL. The bool reports a cache hit.
// Store read/write failures degrade to computing without caching; compute
// failures propagate as-is.
func (s *Service) GetOrCompute(
	ctx context.Context, key string, compute func(ctx context.Context) ([]byte, error),
) ([]byte, bool, error) {
	if data, ok := s.getFromStore(ctx, key); ok {
		s.incCache("hit")
		return data, true, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check: another flight may have populated the key while this
		// caller waited on the group.
		if data, ok := s.getFromStore(ctx, key); ok {
			s.incCache("hit")
			return data, nil
		}
		s.incCache("miss")

		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("Failed to populate result cache",
				zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("compute %s: %w", key, err)
	}
	return v.([]byte), false, nil
}

// TTL returns the entry time-to-live. There is no single-key eviction;
// entries expire by TTL or their version-stamped keys go stale.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) getFromStore(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to read result cache",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}

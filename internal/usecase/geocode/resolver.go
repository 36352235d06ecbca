package geocode

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prospect-labs/prospector/internal/cache"
	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/geo"
)

// Oracle is the external geocoding provider: opaque, possibly slow, possibly
// rate-limited.
type Oracle interface {
	Geocode(ctx context.Context, address string) (geo.Coordinates, error)
}

type outcome struct {
	coords geo.Coordinates
	err    error
}

// Resolver resolves free-form addresses to coordinates. Every outcome,
// success or failure, is cached for the process lifetime keyed by the
// normalized address; lookups for the same address are single-flight.
// Callers that need retry-after-failure use Reset.
type Resolver struct {
	oracle Oracle

	mu       sync.RWMutex
	outcomes map[string]outcome
	group    singleflight.Group

	lookupTotal *prometheus.CounterVec
	logger      *zap.Logger
}

// New creates a Resolver.
// lookupTotal is a counter vec with label "result" ("hit"/"miss"/"failure");
// may be nil.
func New(oracle Oracle, lookupTotal *prometheus.CounterVec, logger *zap.Logger) *Resolver {
	return &Resolver{
		oracle:      oracle,
		outcomes:    make(map[string]outcome),
		lookupTotal: lookupTotal,
		logger:      logger,
	}
}

// Resolve returns the coordinates for an address, consulting the oracle at
// most once per normalized address. Out-of-range coordinates from the oracle
// are a failure, never clamped.
func (r *Resolver) Resolve(ctx context.Context, address string) (geo.Coordinates, error) {
	key := cache.NormalizeAddress(address)
	if key == "" {
		return geo.Coordinates{}, fmt.Errorf("%w: empty address", domain.ErrGeocodeFailure)
	}

	r.mu.RLock()
	out, ok := r.outcomes[key]
	r.mu.RUnlock()
	if ok {
		r.inc("hit")
		return out.coords, out.err
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		out, ok := r.outcomes[key]
		r.mu.RUnlock()
		if ok {
			return out, nil
		}

		r.inc("miss")
		out = r.lookup(ctx, key)

		r.mu.Lock()
		r.outcomes[key] = out
		r.mu.Unlock()
		return out, nil
	})

	out = v.(outcome)
	if out.err != nil {
		r.inc("failure")
	}
	return out.coords, out.err
}

// Reset clears all cached outcomes, including permanent failures.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.outcomes = make(map[string]outcome)
	r.mu.Unlock()
}

func (r *Resolver) lookup(ctx context.Context, normalized string) outcome {
	coords, err := r.oracle.Geocode(ctx, normalized)
	if err != nil {
		r.logger.Warn("Geocoding failed",
			zap.String("address", normalized), zap.Error(err))
		return outcome{err: err}
	}
	if !coords.Valid() {
		return outcome{err: fmt.Errorf(
			"%w: coordinates (%v, %v) out of range for %q",
			domain.ErrGeocodeFailure, coords.Latitude, coords.Longitude, normalized)}
	}
	return outcome{coords: coords}
}

func (r *Resolver) inc(result string) {
	if r.lookupTotal != nil {
		r.lookupTotal.WithLabelValues(result).Inc()
	}
}

package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/geo"
)

// --- Mocks ---

type mockOracle struct {
	coords geo.Coordinates
	err    error
	calls  atomic.Int32

	mu        sync.Mutex
	addresses []string
}

func (m *mockOracle) Geocode(_ context.Context, address string) (geo.Coordinates, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.addresses = append(m.addresses, address)
	m.mu.Unlock()
	return m.coords, m.err
}

func TestResolve_CachesSuccess(t *testing.T) {
	oracle := &mockOracle{coords: geo.Coordinates{Latitude: 40.75, Longitude: -73.99}}
	r := New(oracle, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		coords, err := r.Resolve(ctx, "350 5th Ave")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if coords.Latitude != 40.75 {
			t.Errorf("coords = %+v", coords)
		}
	}
	if oracle.calls.Load() != 1 {
		t.Errorf("oracle called %d times, want 1", oracle.calls.Load())
	}
}

func TestResolve_NormalizesAddressKey(t *testing.T) {
	oracle := &mockOracle{coords: geo.Coordinates{Latitude: 1, Longitude: 1}}
	r := New(oracle, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "350 5th Ave"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := r.Resolve(ctx, "  350 5TH AVE  "); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if oracle.calls.Load() != 1 {
		t.Errorf("oracle called %d times, want 1 for equivalent addresses", oracle.calls.Load())
	}
	if oracle.addresses[0] != "350 5th ave" {
		t.Errorf("oracle saw %q, want the normalized address", oracle.addresses[0])
	}
}

func TestResolve_CachesFailures(t *testing.T) {
	oracle := &mockOracle{err: fmt.Errorf("%w: not found", domain.ErrGeocodeFailure)}
	r := New(oracle, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(ctx, "nowhere"); !errors.Is(err, domain.ErrGeocodeFailure) {
			t.Fatalf("err = %v, want ErrGeocodeFailure", err)
		}
	}
	if oracle.calls.Load() != 1 {
		t.Errorf("oracle called %d times, want 1 (failures are permanent)", oracle.calls.Load())
	}
}

func TestResolve_OutOfRangeCoordinatesFail(t *testing.T) {
	oracle := &mockOracle{coords: geo.Coordinates{Latitude: 95, Longitude: 0}}
	r := New(oracle, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "somewhere")
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("err = %v, want ErrGeocodeFailure for out-of-range coordinates", err)
	}
}

func TestResolve_EmptyAddress(t *testing.T) {
	oracle := &mockOracle{}
	r := New(oracle, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "   ")
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("err = %v, want ErrGeocodeFailure", err)
	}
	if oracle.calls.Load() != 0 {
		t.Error("oracle consulted for an empty address")
	}
}

func TestResolve_SingleFlight(t *testing.T) {
	oracle := &mockOracle{coords: geo.Coordinates{Latitude: 40.75, Longitude: -73.99}}
	r := New(oracle, nil, zap.NewNop())
	ctx := context.Background()

	const concurrent = 16
	var wg sync.WaitGroup
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(ctx, "350 5th Ave"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if oracle.calls.Load() != 1 {
		t.Errorf("oracle called %d times, want 1", oracle.calls.Load())
	}
}

func TestReset_ClearsFailures(t *testing.T) {
	oracle := &mockOracle{err: fmt.Errorf("%w: transient outage", domain.ErrGeocodeFailure)}
	r := New(oracle, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "10001"); err == nil {
		t.Fatal("expected failure")
	}

	oracle.err = nil
	oracle.coords = geo.Coordinates{Latitude: 40.75, Longitude: -73.99}
	r.Reset()

	coords, err := r.Resolve(ctx, "10001")
	if err != nil {
		t.Fatalf("Resolve after Reset: %v", err)
	}
	if coords.Latitude != 40.75 {
		t.Errorf("coords = %+v", coords)
	}
	if oracle.calls.Load() != 2 {
		t.Errorf("oracle called %d times, want 2", oracle.calls.Load())
	}
}

package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prospect-labs/prospector/internal/domain"
)

func TestGeocode_Success(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude": 40.7506, "longitude": -73.9972}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	coords, err := c.Geocode(context.Background(), "350 5th Ave, New York")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if coords.Latitude != 40.7506 || coords.Longitude != -73.9972 {
		t.Errorf("coords = %+v", coords)
	}
	if gotQuery != "350 5th Ave, New York" {
		t.Errorf("query param = %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("api_key param = %q", gotKey)
	}
}

func TestGeocode_ProviderErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "address not found"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Geocode(context.Background(), "nowhere at all")
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("err = %v, want ErrGeocodeFailure", err)
	}
}

func TestGeocode_MissingCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 40.75}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Geocode(context.Background(), "10001")
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("err = %v, want ErrGeocodeFailure", err)
	}
}

func TestGeocode_Non200IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Geocode(context.Background(), "10001")
	if err == nil {
		t.Fatal("expected error for 502")
	}
	// A broken oracle must stay distinguishable from a bad address.
	if errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("transport error classified as geocode failure: %v", err)
	}
}

func TestGeocode_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Geocode(context.Background(), "10001")
	if !errors.Is(err, domain.ErrGeocodeFailure) {
		t.Fatalf("err = %v, want ErrGeocodeFailure", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Empire State Building to the Statue of Liberty, roughly 5.2 miles.
	d := Haversine(40.7484, -73.9857, 40.6892, -74.0445)
	if d < 4.9 || d > 5.5 {
		t.Errorf("Haversine = %v miles, want ~5.2", d)
	}
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	if d := Haversine(40.75, -73.99, 40.75, -73.99); d != 0 {
		t.Errorf("Haversine of identical points = %v, want 0", d)
	}
}

func TestHaversine_RadiusBoundaryInclusive(t *testing.T) {
	center := Coordinates{Latitude: 40.7506, Longitude: -73.9972}
	const radius = 25.0

	// Walk due north until the distance crosses the radius, then check the
	// predicate d <= radius flips exactly there.
	just := center.Latitude + (radius-0.01)/MilesPerDegreeLat
	past := center.Latitude + (radius+0.01)/MilesPerDegreeLat

	if d := Haversine(center.Latitude, center.Longitude, just, center.Longitude); d > radius {
		t.Errorf("point at %v miles should be inside radius %v", d, radius)
	}
	if d := Haversine(center.Latitude, center.Longitude, past, center.Longitude); d <= radius {
		t.Errorf("point at %v miles should be outside radius %v", d, radius)
	}
}

func TestBoundingBox(t *testing.T) {
	center := Coordinates{Latitude: 40.0, Longitude: -74.0}
	minLat, maxLat, minLon, maxLon := BoundingBox(center, 69.0)

	if got := maxLat - center.Latitude; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("lat delta = %v, want 1.0 degree for a 69 mile radius", got)
	}
	if got := center.Latitude - minLat; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("lat delta = %v, want 1.0", got)
	}

	// Longitude widens by 1/cos(lat)
	wantDLon := 1.0 / math.Cos(40.0*math.Pi/180)
	if got := maxLon - center.Longitude; math.Abs(got-wantDLon) > 1e-9 {
		t.Errorf("lon delta = %v, want %v", got, wantDLon)
	}
	if got := center.Longitude - minLon; math.Abs(got-wantDLon) > 1e-9 {
		t.Errorf("lon delta = %v, want %v", got, wantDLon)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := Coordinates{Latitude: 40.7506, Longitude: -73.9972}
	minLat, maxLat, minLon, maxLon := BoundingBox(center, 25)

	// A point just inside the circle must fall inside the box: the box is a
	// superset of the circle.
	lat := center.Latitude + 24.9/MilesPerDegreeLat
	if lat < minLat || lat > maxLat {
		t.Errorf("in-circle latitude %v outside box [%v, %v]", lat, minLat, maxLat)
	}
	if center.Longitude < minLon || center.Longitude > maxLon {
		t.Errorf("center longitude outside box")
	}
}

func TestCoordinatesValid(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"ok", Coordinates{40.75, -73.99}, true},
		{"lat too high", Coordinates{90.1, 0}, false},
		{"lat too low", Coordinates{-90.1, 0}, false},
		{"lon too high", Coordinates{0, 180.1}, false},
		{"lon too low", Coordinates{0, -180.1}, false},
		{"poles and date line", Coordinates{90, 180}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coords.Valid(); got != tt.want {
				t.Errorf("Valid(%+v) = %v, want %v", tt.coords, got, tt.want)
			}
		})
	}
}

package geo

import "math"

// EarthRadiusMiles is the mean radius of Earth used for Haversine distance.
const EarthRadiusMiles = 3959.0

// MilesPerDegreeLat approximates one degree of latitude in miles, used for
// the rectangular bounding-box pre-filter.
const MilesPerDegreeLat = 69.0

// Coordinates is a geocoded point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the point lies within [-90,90] x [-180,180].
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Haversine returns the great-circle distance in miles between two points
// given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// BoundingBox returns the rectangular pre-filter around a center point:
// dLat = radius/69.0 degrees, dLon widened by the latitude's cosine. The box
// over-selects; the exact Haversine predicate must still be applied.
func BoundingBox(center Coordinates, radiusMiles float64) (minLat, maxLat, minLon, maxLon float64) {
	dLat := radiusMiles / MilesPerDegreeLat
	dLon := radiusMiles / (MilesPerDegreeLat * math.Cos(center.Latitude*math.Pi/180))
	return center.Latitude - dLat, center.Latitude + dLat,
		center.Longitude - dLon, center.Longitude + dLon
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ResultCacheTotal counts result-cache lookups by result (hit/miss).
	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prospector",
			Name:      "result_cache_total",
			Help:      "Result cache lookups by result",
		},
		[]string{"result"},
	)

	// GeocodeLookupTotal counts geocode lookups by result (hit/miss/failure).
	GeocodeLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prospector",
			Name:      "geocode_lookup_total",
			Help:      "Geocode lookups by result",
		},
		[]string{"result"},
	)

	// QueryDuration observes backend query execution time for a full
	// compile + count + fetch cycle.
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prospector",
			Name:      "query_duration_seconds",
			Help:      "Backend query execution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// RegisterSearchMetrics registers the search-path collectors. Called once
// from the composition root; no init() so tests can construct services
// without global registration.
func RegisterSearchMetrics() {
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(GeocodeLookupTotal)
	prometheus.MustRegister(QueryDuration)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PermissionChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siperum_permission_checks_total",
		Help: "Total permission evaluations",
	})
	PermissionDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siperum_permission_denials_total",
		Help: "Total permission evaluations that denied access",
	})
	ReviewTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "siperum_review_transitions_total",
		Help: "Review transitions by entity and action",
	}, []string{"entity", "action"})
	ReviewConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siperum_review_conflicts_total",
		Help: "Review transitions rejected with a conflict",
	})
	ReverseGeocodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "siperum_reverse_geocode_total",
		Help: "Reverse geocode lookups by outcome (hit, outside, incomplete, error)",
	}, []string{"outcome"})
	CentroidCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siperum_centroid_cache_hits_total",
		Help: "Fallback centroid lookups served from cache",
	})
	CentroidCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "siperum_centroid_cache_misses_total",
		Help: "Fallback centroid lookups that rebuilt the index",
	})
	SpatialFilterDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "siperum_spatial_filter_duration_ms",
		Help:    "Per-record spatial intersection duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

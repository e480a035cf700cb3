// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StoreStatusOK       = "ok"
	StoreStatusNotFound = "not_found"
	StoreStatusConflict = "conflict"
	StoreStatusError    = "error"
)

var (
	// Registry holds the application collectors plus the Go runtime ones.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kanso",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kanso",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kanso",
			Subsystem: "docstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of document store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation", "collection", "status"},
	)

	trackingUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kanso",
			Subsystem: "tracking",
			Name:      "upserts_total",
			Help:      "Daily tracking writes by outcome (inserted, updated).",
		},
		[]string{"outcome"},
	)

	rewardPoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kanso",
			Subsystem: "rewards",
			Name:      "points_granted_total",
			Help:      "Total reward points granted.",
		},
	)

	degradedReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kanso",
			Subsystem: "http",
			Name:      "degraded_reads_total",
			Help:      "Reads answered with zero values because of an internal error.",
		},
		[]string{"endpoint"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		storeDuration,
		trackingUpserts,
		rewardPoints,
		degradedReads,
	)
}

// Handler exposes the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStoreOperation observes one store call. status is one of the
// StoreStatus values.
func RecordStoreOperation(operation, collection, status string, duration time.Duration) {
	storeDuration.WithLabelValues(operation, collection, status).Observe(duration.Seconds())
}

func IncTrackingUpsert(inserted bool) {
	outcome := "updated"
	if inserted {
		outcome = "inserted"
	}
	trackingUpserts.WithLabelValues(outcome).Inc()
}

func AddRewardPoints(points int) {
	rewardPoints.Add(float64(points))
}

func IncDegradedRead(endpoint string) {
	degradedReads.WithLabelValues(endpoint).Inc()
}

// ABOUTME: Prometheus collectors for extraction, cache and HTTP traffic
// ABOUTME: Registers collectors at init and exposes small Record helpers
// Package metrics provides Prometheus metrics for the audio service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// extractionsTotal counts extraction calls.
	// Labels:
	//   - outcome: "ok" or an error kind (not_found, unavailable, unsupported_format, ...)
	//   - format: output container
	extractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hippolingua_extractions_total",
			Help: "Total number of segment extractions",
		},
		[]string{"outcome", "format"},
	)

	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hippolingua_extraction_duration_seconds",
			Help:    "Duration of segment extractions in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"format"},
	)

	extractionOutputBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hippolingua_extraction_output_bytes",
			Help:    "Size of encoded extraction output in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	// blobCacheTotal counts blob cache lookups.
	// Labels:
	//   - result: "hit", "miss" or "error"
	blobCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hippolingua_blob_cache_total",
			Help: "Total number of blob cache lookups",
		},
		[]string{"result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hippolingua_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(extractionsTotal)
	prometheus.MustRegister(extractionDuration)
	prometheus.MustRegister(extractionOutputBytes)
	prometheus.MustRegister(blobCacheTotal)
	prometheus.MustRegister(httpRequestsTotal)
}

// RecordExtraction records one extraction call. outputBytes is ignored
// for failed extractions.
func RecordExtraction(outcome, format string, elapsed time.Duration, outputBytes int) {
	extractionsTotal.WithLabelValues(outcome, format).Inc()
	extractionDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	if outcome == "ok" {
		extractionOutputBytes.Observe(float64(outputBytes))
	}
}

// RecordCacheLookup records a blob cache hit, miss or error
func RecordCacheLookup(result string) {
	blobCacheTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(route, status string) {
	httpRequestsTotal.WithLabelValues(route, status).Inc()
}

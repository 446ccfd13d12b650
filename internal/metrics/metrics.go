package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidshare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vidshare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30},
		},
		[]string{"method", "route"},
	)

	// Edge toggles by kind and store outcome (inserted, removed, contended).
	TogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidshare",
			Name:      "toggle_total",
			Help:      "Total edge toggle attempts",
		},
		[]string{"kind", "outcome"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidshare",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Total media uploads",
		},
		[]string{"content_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidshare",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"content_type"},
	)

	CleanupJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidshare",
			Subsystem: "cleanup",
			Name:      "jobs_total",
			Help:      "Total cleanup jobs processed",
		},
		[]string{"kind", "status"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordToggle records a single toggle attempt.
func RecordToggle(kind, outcome string) {
	TogglesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordUpload records a media upload.
func RecordUpload(contentType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
	}
}

// RecordCleanup records a processed cleanup job.
func RecordCleanup(kind, status string) {
	CleanupJobsTotal.WithLabelValues(kind, status).Inc()
}

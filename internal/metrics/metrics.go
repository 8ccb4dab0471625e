package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "filemgr",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "api",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"generic_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"generic_type"},
	)

	// Pipeline
	ImagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "media",
			Name:      "images_processed_total",
			Help:      "Images run through the derivation pipeline, by outcome",
		},
		[]string{"status"},
	)

	ProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "filemgr",
			Subsystem: "media",
			Name:      "process_duration_seconds",
			Help:      "Derivation pipeline duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	AssetsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "media",
			Name:      "assets_created_total",
			Help:      "Derived assets persisted, by size tag",
		},
		[]string{"size_tag"},
	)

	AssetsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "media",
			Name:      "assets_skipped_total",
			Help:      "Derived assets skipped, by reason",
		},
		[]string{"reason"},
	)

	EventsPublishFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filemgr",
			Subsystem: "events",
			Name:      "publish_failed_total",
			Help:      "Events that could not be handed to the message sink",
		},
		[]string{"topic"},
	)
)

const (
	SkipUpscale   = "upscale"
	SkipExisting  = "existing"
	SkipDuplicate = "duplicate"
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(genericType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(genericType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(genericType).Add(float64(bytes))
	}
}

// RecordProcess records one pipeline run
func RecordProcess(status string, durationSec float64) {
	ImagesProcessedTotal.WithLabelValues(status).Inc()
	ProcessDuration.Observe(durationSec)
}

func RecordAssetCreated(sizeTag string) {
	AssetsCreatedTotal.WithLabelValues(sizeTag).Inc()
}

func RecordAssetSkipped(reason string) {
	AssetsSkippedTotal.WithLabelValues(reason).Inc()
}

func RecordPublishFailure(topic string) {
	EventsPublishFailedTotal.WithLabelValues(topic).Inc()
}

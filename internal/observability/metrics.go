package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Name:      "uploads_stored_total",
		Help:      "Total number of sensor uploads stored",
	}, []string{"stream_type"})

	SamplesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Name:      "samples_ingested_total",
		Help:      "Total number of individual samples ingested",
	}, []string{"stream_type"})

	UploadValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Name:      "upload_validation_failures_total",
		Help:      "Total number of uploads rejected during validation",
	}, []string{"stream_type"})

	SleepSummariesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Name:      "sleep_summaries_consumed_total",
		Help:      "Total number of sleep documents ingested from the analysis job",
	})

	CorrelationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulse",
		Name:      "correlation_duration_seconds",
		Help:      "Duration of GPS correlation queries",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulse",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pulse",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)

package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datasets_generated_total",
		Help: "Total number of datasets generated",
	})

	DatasetsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datasets_failed_total",
		Help: "Total number of failed generation runs",
	}, []string{"reason"})

	DatasetsCachedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datasets_cached_total",
		Help: "Total number of generation requests served from the idempotency cache",
	})

	RecordsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "records_generated_total",
		Help: "Total number of delivery records synthesized",
	})

	ErrorsInjectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_injected_total",
		Help: "Total number of injected data-quality defects",
	}, []string{"error_type"})

	GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dataset_generation_latency_seconds",
		Help:    "Latency of full dataset generation runs",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

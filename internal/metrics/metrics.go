// Package metrics holds the Prometheus metrics of page builds and the HTTP server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build metrics
var (
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homepage_builds_total",
			Help: "Total number of page builds by result",
		},
		[]string{"result"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homepage_build_duration_seconds",
			Help:    "Page build duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ProviderFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homepage_provider_failures_total",
			Help: "Total number of source provider failures by source and error kind",
		},
		[]string{"source", "kind"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homepage_provider_duration_seconds",
			Help:    "Source provider call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SectionItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homepage_section_items",
			Help: "Number of items in each page section after the last successful build",
		},
		[]string{"section"},
	)

	LastSuccessfulBuild = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homepage_last_successful_build_timestamp_seconds",
			Help: "Unix time of the last successful page build",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordBuild records the outcome of one page build.
func RecordBuild(success bool, d time.Duration) {
	result := "success"

	if !success {
		result = "failure"
	}

	BuildsTotal.WithLabelValues(result).Inc()
	BuildDuration.Observe(d.Seconds())

	if success {
		LastSuccessfulBuild.SetToCurrentTime()
	}
}

func RecordProviderCall(source string, d time.Duration) {
	ProviderDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordProviderFailure counts a failed source; kind is fetch, parse or data_shape.
func RecordProviderFailure(source, kind string) {
	ProviderFailuresTotal.WithLabelValues(source, kind).Inc()
}

func RecordSection(section string, items int) {
	SectionItems.WithLabelValues(section).Set(float64(items))
}

func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

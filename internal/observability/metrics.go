package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sampling attempt outcomes used as the "outcome" label. Fetch failures use
// the client's error category instead.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

var (
	registry *prometheus.Registry

	// Status server request rate.
	HTTPRequestsTotal *prometheus.CounterVec

	// Status server latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Status server requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap API call rate. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// External API latency per request. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Collector attempts by outcome. accepted/total is the sampling yield; most
	// ocean coordinates come back without a country or name.
	SampleAttemptsTotal *prometheus.CounterVec

	// Records currently held in the sample.
	SampleRecords prometheus.Gauge

	// Target sample size for the run.
	SampleTarget prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of status server HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "Status server HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of status server HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	SampleAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampleAttemptsTotal",
			Help: "Total number of sampling attempts by outcome",
		},
		[]string{"outcome"},
	)
	SampleRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sampleRecords",
			Help: "Number of validated records collected so far",
		},
	)
	SampleTarget = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sampleTarget",
			Help: "Target number of records for the run",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		SampleAttemptsTotal, SampleRecords, SampleTarget,
	)
}

// RecordAttempt records one collector attempt with the given outcome label.
func RecordAttempt(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	SampleAttemptsTotal.WithLabelValues(outcome).Inc()
}

// SetSampleProgress updates the sample size gauges.
func SetSampleProgress(collected, target int) {
	SampleRecords.Set(float64(collected))
	SampleTarget.Set(float64(target))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcomes recorded by ObserveVerification.
const (
	OutcomeSuccess      = "success"
	OutcomeInputError   = "input_error"
	OutcomeUpstreamFail = "upstream_error"
)

// Metrics groups the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	verifications *prometheus.CounterVec
	applicable    prometheus.Histogram
	catalogFetch  *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "discount_verifications_total",
			Help:      "Discount verification requests, by outcome.",
		}, []string{"outcome"}),
		applicable: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "discount_applicable_codes",
			Help:      "Number of applicable codes per successful verification.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		catalogFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "discount_catalog_fetch_seconds",
			Help:      "Discount catalog fetch latency, by source and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.verifications,
		m.applicable,
		m.catalogFetch,
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. Status is bucketed into its class ("2xx").
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveVerification records the outcome of a verification request and,
// for successful ones, the size of the applicable set.
func (m *Metrics) ObserveVerification(outcome string, applicable int) {
	m.verifications.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.applicable.Observe(float64(applicable))
	}
}

// ObserveCatalogFetch matches discount.FetchObserver.
func (m *Metrics) ObserveCatalogFetch(source string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogFetch.WithLabelValues(source, result).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

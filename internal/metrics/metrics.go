// Package metrics exposes Prometheus instrumentation for upstream telemetry
// calls and the query cache.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer         prometheus.Gatherer
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_upstream_requests_total",
		Help: "Requests sent to the telemetry API by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_upstream_latency_seconds",
		Help:    "Round trip latency of telemetry API requests.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"endpoint"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_lookups_total",
		Help: "Query cache lookups by result.",
	}, []string{"result"})

	reg.MustRegister(requests, latency, lookups)

	return &Metrics{
		gatherer:         reg,
		upstreamRequests: requests,
		upstreamLatency:  latency,
		cacheLookups:     lookups,
	}
}

// ObserveRequest records one upstream round trip.
func (m *Metrics) ObserveRequest(path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	endpoint := Endpoint(path)
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Endpoint collapses per-device paths so label cardinality stays bounded.
func Endpoint(path string) string {
	if rest, ok := strings.CutPrefix(path, "/devices/"); ok && rest != "" {
		return "/devices/:id"
	}
	return path
}

// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "awards"

// Metrics groups the application collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	votesCast       prometheus.Counter
	replaceFailures *prometheus.CounterVec
	cacheRequests   *prometheus.CounterVec
	phase           *prometheus.GaugeVec
	httpDuration    *prometheus.HistogramVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		votesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes written to the ledger.",
		}),
		replaceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_replace_failures_total",
			Help:      "Ballot replacements that failed, by kind.",
		}, []string{"kind"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Read-through cache lookups by resource and result.",
		}, []string{"resource", "result"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "voting_phase",
			Help:      "1 for the current voting phase, 0 for the others.",
		}, []string{"phase"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.votesCast,
		m.replaceFailures,
		m.cacheRequests,
		m.phase,
		m.httpDuration,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// VotesCast counts n freshly written votes
func (m *Metrics) VotesCast(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.votesCast.Add(float64(n))
}

// ReplaceFailed counts a failed ballot replacement
func (m *Metrics) ReplaceFailed(kind string) {
	if m == nil {
		return
	}
	m.replaceFailures.WithLabelValues(kind).Inc()
}

// CacheLookup implements cache.Observer. Per-category keys are grouped by their prefix.
func (m *Metrics) CacheLookup(key string, hit bool) {
	if m == nil {
		return
	}
	resource, _, _ := strings.Cut(key, ":")
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(resource, result).Inc()
}

// SetPhase marks phase as the current one
func (m *Metrics) SetPhase(phase models.VotingPhase) {
	if m == nil {
		return
	}
	for _, p := range models.AllPhases {
		value := 0.0
		if p == phase {
			value = 1
		}
		m.phase.WithLabelValues(string(p)).Set(value)
	}
}

// ObserveHTTP records the latency of one request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

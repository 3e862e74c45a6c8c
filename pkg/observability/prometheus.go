package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collects run metrics in a private registry. A CLI run is short
// lived, so the metrics are written to a node-exporter textfile at the end
// instead of being scraped.
type Prometheus struct {
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	duration    prometheus.Histogram
	lookups     *prometheus.CounterVec
	cache       *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// NewPrometheus creates and registers all collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securesum_runner_invocations_total",
			Help: "Runner invocations by outcome",
		},
		[]string{"outcome"},
	)
	p.duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "securesum_runner_duration_seconds",
			Help:    "Duration of runner invocations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
	p.lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securesum_probe_cache_lookups_total",
			Help: "Stored probe record lookups by result",
		},
		[]string{"result"},
	)
	p.cache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securesum_lookup_cache_total",
			Help: "Registry lookup cache accesses",
		},
		[]string{"key_type", "result"},
	)
	p.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securesum_registry_requests_total",
			Help: "Registry HTTP requests by host and status",
		},
		[]string{"host", "status"},
	)

	p.registry.MustRegister(p.invocations, p.duration, p.lookups, p.cache, p.requests)
	return p
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) OnTargetStart(context.Context, string) {}

func (p *Prometheus) OnTargetComplete(_ context.Context, _ string, outcome string, d time.Duration) {
	p.invocations.WithLabelValues(outcome).Inc()
	p.duration.Observe(d.Seconds())
}

func (p *Prometheus) OnProbeLookup(_ context.Context, result string) {
	p.lookups.WithLabelValues(result).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, _ string, host string, status int, _ time.Duration) {
	p.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
}

func (p *Prometheus) OnError(_ context.Context, _ string, host string, _ error) {
	p.requests.WithLabelValues(host, "error").Inc()
}

var (
	_ RunnerHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ HTTPHooks   = (*Prometheus)(nil)
)

// Package metric exposes process and command metrics in Prometheus format
// (§11), reusing the donor's registry-wrapper shape but with real
// prometheus/client_golang collectors in place of the placeholder
// interfaces it started from.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric this process exports, registered against its
// own *prometheus.Registry rather than the global default so tests can
// construct independent instances.
type Registry struct {
	registry *prometheus.Registry

	CommandsTotal     *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	ConnectedClients  prometheus.Gauge
}

// NewRegistry creates a Registry with every counter/gauge/histogram
// registered, plus the standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sedris_commands_total",
			Help: "Total commands executed, by command name.",
		}, []string{"command"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sedris_command_duration_seconds",
			Help:    "Command execution time in seconds, by command name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sedris_connected_clients",
			Help: "Number of client connections currently open.",
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.ConnectedClients,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// AttachKeyspace registers collectors sourcing sedris_keys{db},
// sedris_expired_keys_total, sedris_keyspace_hits_total, and
// sedris_keyspace_misses_total from ks, refreshed on every scrape rather
// than pushed per-event.
func (r *Registry) AttachKeyspace(ks KeyspaceSource) {
	r.registry.MustRegister(newKeyspaceCollector(ks))
	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "sedris_expired_keys_total",
		Help: "Total keys removed by lazy or active expiration.",
	}, func() float64 { return float64(ks.ExpiredKeyCount()) }))
	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "sedris_keyspace_hits_total",
		Help: "Total successful key lookups.",
	}, func() float64 { return float64(ks.HitCount()) }))
	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "sedris_keyspace_misses_total",
		Help: "Total key lookups that found no live value.",
	}, func() float64 { return float64(ks.MissCount()) }))
}

// IncCommand records one executed command and its duration.
func (r *Registry) IncCommand(name string, seconds float64) {
	r.CommandsTotal.WithLabelValues(name).Inc()
	r.CommandDuration.WithLabelValues(name).Observe(seconds)
}

// IncConnectedClients/DecConnectedClients track open connections.
func (r *Registry) IncConnectedClients() { r.ConnectedClients.Inc() }
func (r *Registry) DecConnectedClients() { r.ConnectedClients.Dec() }

// Handler returns an HTTP handler serving this Registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide Registry, created on first use.
func Global() *Registry {
	globalOnce.Do(func() { global = NewRegistry() })
	return global
}

// Handler returns an HTTP handler serving the global Registry's metrics.
func Handler() http.Handler { return Global().Handler() }

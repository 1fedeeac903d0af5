// Package metric exposes command and keyspace metrics in Prometheus format
// (§11):
//
//   - prometheus.go: the Registry, its push-model counters/histogram, the
//     scrape-time hit/miss/expiry counter functions, and the HTTP handler
//   - collector.go: a scrape-time collector reading per-database key
//     counts straight from the keyspace
//
// Metrics are exposed at /metrics when --metrics-addr is configured.
package metric

// Package httpserver is a thin net/http.Server wrapper used for the
// optional --metrics-addr listener (§11): /metrics (Prometheus exposition)
// and /healthz (liveness).
package httpserver

// Package httpserver is a thin net/http.Server wrapper used for the
// optional --metrics-addr listener (§11): /metrics (Prometheus exposition)
// and /healthz (liveness).
package httpserver

import (
	"context"
	"net/http"
)

// Server is the metrics/health HTTP listener.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a Server bound to addr, serving handler at its configured
// routes (typically built with NewMetricsHandler).
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		handler: handler,
	}
}

// NewMetricsHandler builds the mux served by the --metrics-addr listener:
// metricsHandler (typically metric.Handler()) at /metrics, and a trivial
// 200 OK at /healthz.
func NewMetricsHandler(metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

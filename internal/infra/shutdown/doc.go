// Package shutdown provides graceful process shutdown.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - A timeout-bounded context passed to every cleanup hook
//   - Cleanup callback registration
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return srv.Close(ctx) })
//	err := h.Wait() // blocks until a signal arrives, then runs the hooks
package shutdown

// Package main provides the entry point for sedris-server.
//
// The server is a RESP-compatible in-memory key-value store:
//
//   - RESP (Redis Serialization Protocol) listener on a TCP socket
//   - Optional TLS-wrapped listener on a second address
//   - Background snapshotting to a single dump file, restored at boot
//   - Optional Prometheus metrics and health endpoint
//
// Usage:
//
//	sedris-server [flags]
//	sedris-server --config /path/to/config.yaml
//
// The server loads configuration, restores any existing snapshot,
// starts the RESP listener(s), the expiry reaper, and the optional
// metrics listener, then waits for SIGINT/SIGTERM to shut down.
package main

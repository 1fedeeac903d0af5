// Package logger provides structured logging for sedris-server.
//
// This package wraps log/slog for structured logging:
//
//   - logger.go: Logger interface, slog-backed implementation, level control
//   - context.go: Context-aware logging with request/trace IDs
//   - redact.go: Sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, with runtime adjustment via SetLevel
//   - Automatic sensitive data masking
//   - Context propagation for request tracing
package logger

// Package config provides server configuration for sedris-server.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (port range, TLS files, retention)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: defaults, an optional YAML file, environment variables
// (SEDRIS_ prefix), and CLI flags, in that precedence order (§10).
package config

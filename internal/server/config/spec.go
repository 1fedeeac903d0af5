// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for sedris-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the RESP listener(s) and the optional metrics
// listener (§6/§11).
type ServerSection struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Databases int    `koanf:"databases"`

	TLS TLSConfig `koanf:"tls"`

	// MetricsAddr, when non-empty, serves Prometheus metrics and a health
	// endpoint over plain HTTP (§11, §6's --metrics-addr).
	MetricsAddr string `koanf:"metrics_addr"`

	// RateLimit caps new connections accepted per second per source address.
	// Zero disables rate limiting (§5 "Admission control").
	RateLimit int `koanf:"rate_limit"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// TLSConfig configures the optional TLS-wrapped RESP listener.
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// SavePoint is one (interval, min-changes) automatic-save rule (§4.7),
// e.g. {900, 1} means "save if at least 1 key changed in 900s".
type SavePoint struct {
	IntervalSeconds int `koanf:"interval_seconds"`
	MinChanges      int `koanf:"min_changes"`
}

// StorageSection configures snapshot persistence.
type StorageSection struct {
	DataDir    string `koanf:"data_dir"`
	DBFilename string `koanf:"dbfilename"`

	SavePoints []SavePoint `koanf:"save_points"`

	RetentionCount int `koanf:"retention_count"`
	RetentionDays  int `koanf:"retention_days"`
}

// SecuritySection configures optional snapshot-at-rest encryption (§4.7,
// §11). A passphrase derives the key via Argon2id; EncryptionKey holds it
// in its raw 32-byte form when the key is supplied directly instead.
type SecuritySection struct {
	EncryptionKey        string `koanf:"encryption_key"`
	EncryptionPassphrase string `koanf:"encryption_passphrase"`
}

// LogSection configures structured logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values (§6).
const (
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 6379
	DefaultDatabases = 16

	DefaultDataDir        = "/var/lib/sedris-server/data"
	DefaultDBFilename     = "dump.rdb"
	DefaultRetentionCount = 5
	DefaultRetentionDays  = 7

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultSavePoints mirrors the classic "900 1 / 300 100 / 60 10000" policy
// (§4.7, §13).
func DefaultSavePoints() []SavePoint {
	return []SavePoint{
		{IntervalSeconds: 900, MinChanges: 1},
		{IntervalSeconds: 300, MinChanges: 100},
		{IntervalSeconds: 60, MinChanges: 10000},
	}
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Host:         DefaultHost,
			Port:         DefaultPort,
			Databases:    DefaultDatabases,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		Storage: StorageSection{
			DataDir:        DefaultDataDir,
			DBFilename:     DefaultDBFilename,
			SavePoints:     DefaultSavePoints(),
			RetentionCount: DefaultRetentionCount,
			RetentionDays:  DefaultRetentionDays,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

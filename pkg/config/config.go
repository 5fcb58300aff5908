package config

import "time"

// Config is the root configuration structure for Meridian.
// It contains all configuration sections for the HTTP server, the policy
// version store, seed file loading, audit archival, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and header limits.
	Server ServerConfig `yaml:"server"`

	// Storage contains configuration for the policy version store backend.
	Storage StorageConfig `yaml:"storage"`

	// Policy contains configuration for the policy seed file: where to
	// read the initial configuration and whether to watch it for changes.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains configuration for audit trail archival.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. If IdleTimeout is zero, ReadTimeout is used.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// StorageConfig contains configuration for the policy version store.
type StorageConfig struct {
	// Backend selects the store implementation: "memory" or "sqlite".
	// The memory backend loses all versions on restart; use it for tests
	// and local development only.
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains settings for the SQLite store backend.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/meridian.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`
}

// PolicyConfig contains configuration for the policy seed file.
type PolicyConfig struct {
	// SeedPath is the YAML file holding the initial policy configuration.
	// On startup an empty store is seeded from this file. Empty disables
	// seeding; the built-in baseline then answers queries until the first
	// version is created through the API.
	SeedPath string `yaml:"seed_path"`

	// Watch controls whether the seed file is watched for changes. Each
	// change imports a new draft; drafts still require explicit activation.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a change triggers an import.
	// Default: 250ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// AuditConfig contains configuration for audit trail archival.
type AuditConfig struct {
	// Archive contains settings for scheduled archival of the audit trail
	// into a standalone SQLite database.
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig contains settings for scheduled audit archival.
type ArchiveConfig struct {
	// Enabled controls whether scheduled archival runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression (e.g., "0 3 * * *" for daily at 3 AM).
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// Path is the archive database file path.
	// Default: "data/audit-archive.db"
	Path string `yaml:"path"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

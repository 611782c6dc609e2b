package server

import "time"

const (
	defaultAddr            = ":8080"
	defaultShutdownSeconds = 10
)

// Config controls the HTTP listener.
type Config struct {
	Addr                   string `json:"addr,omitempty" toml:"addr"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds,omitempty" toml:"shutdown_timeout_seconds"`
}

// DefaultConfig returns a Config listening on :8080.
func DefaultConfig() Config {
	return Config{
		Addr:                   defaultAddr,
		ShutdownTimeoutSeconds: defaultShutdownSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.ShutdownTimeoutSeconds > 0 {
		c.ShutdownTimeoutSeconds = source.ShutdownTimeoutSeconds
	}
}

// ShutdownTimeout is the grace period for in-flight requests on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return defaultShutdownSeconds * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

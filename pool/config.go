package pool

import (
	"log/slog"
	"time"
)

// Config defines configuration for a connection pool. The zero value is
// usable; missing fields are filled with defaults by New.
type Config struct {
	// Name labels the pool in logs and metrics.
	Name string
	// MinSize is the number of connections Initialize pre-creates and the
	// floor the health monitor refills to.
	MinSize int
	// MaxSize bounds the number of tracked connections.
	MaxSize int
	// MaxIdleTime is how long an idle connection may go unused before the
	// health monitor retires it.
	MaxIdleTime time.Duration
	// HealthCheckInterval is the period between monitor sweeps.
	HealthCheckInterval time.Duration
	// AcquireTimeout is the default wait bound for Acquire.
	AcquireTimeout time.Duration
	// HealthFailureLimit is the number of consecutive failed probes after
	// which the monitor retires a connection. A single failed probe is not
	// fatal to avoid flapping on transient blips.
	HealthFailureLimit int

	// Logger receives background-recovery events. Defaults to slog.Default().
	Logger *slog.Logger
	// Observer receives pool metrics. Defaults to NopObserver.
	Observer Observer
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 10
	}
	if c.MinSize < 0 {
		c.MinSize = 0
	}
	if c.MinSize > c.MaxSize {
		c.MinSize = c.MaxSize
	}
	if c.MaxIdleTime <= 0 {
		c.MaxIdleTime = 5 * time.Minute
	}
	if c.HealthCheckInterval <= 0 {
		c.HealthCheckInterval = 30 * time.Second
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 5 * time.Second
	}
	if c.HealthFailureLimit <= 0 {
		c.HealthFailureLimit = 3
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	return c
}

// Package config loads the daemon configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level daemon configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Pools   []PoolConfig  `yaml:"pools"`
}

// ServerConfig configures the admin HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// PoolConfig declares one named pool over a backend.
type PoolConfig struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"` // "tcp", "postgres", "cache" or "pebble"
	Address string `yaml:"address"`

	MinSize             int           `yaml:"min_size"`
	MaxSize             int           `yaml:"max_size"`
	MaxIdleTime         time.Duration `yaml:"max_idle_time"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	AcquireTimeout      time.Duration `yaml:"acquire_timeout"`
	HealthFailureLimit  int           `yaml:"health_failure_limit"`
}

var validBackends = map[string]bool{
	"tcp":      true,
	"postgres": true,
	"cache":    true,
	"pebble":   true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads and validates a configuration file. Fields left empty keep the
// defaults from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics.path must not be empty when metrics are enabled")
	}

	seen := make(map[string]bool, len(c.Pools))
	for i := range c.Pools {
		p := &c.Pools[i]
		if p.Name == "" {
			return fmt.Errorf("pools[%d]: name must not be empty", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("pools[%d]: duplicate pool name %q", i, p.Name)
		}
		seen[p.Name] = true

		if !validBackends[p.Backend] {
			return fmt.Errorf("pool %q: unknown backend %q", p.Name, p.Backend)
		}
		if p.Address == "" {
			return fmt.Errorf("pool %q: address must not be empty", p.Name)
		}
		if p.MinSize < 0 {
			return fmt.Errorf("pool %q: min_size must not be negative", p.Name)
		}
		if p.MaxSize < 0 {
			return fmt.Errorf("pool %q: max_size must not be negative", p.Name)
		}
		if p.MaxSize > 0 && p.MinSize > p.MaxSize {
			return fmt.Errorf("pool %q: min_size %d exceeds max_size %d", p.Name, p.MinSize, p.MaxSize)
		}
	}
	return nil
}

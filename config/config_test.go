package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullConfig(t *testing.T) {
	data := []byte(`
server:
  listen_addr: ":9090"
logging:
  level: debug
  format: text
  output: stderr
metrics:
  enabled: true
  path: /metrics
pools:
  - name: sessions
    backend: cache
    address: localhost:6379
    min_size: 2
    max_size: 8
    max_idle_time: 2m
    health_check_interval: 15s
    acquire_timeout: 3s
    health_failure_limit: 5
  - name: primary
    backend: postgres
    address: postgres://app@localhost:5432/app
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.Len(t, cfg.Pools, 2)

	sessions := cfg.Pools[0]
	assert.Equal(t, "cache", sessions.Backend)
	assert.Equal(t, 2, sessions.MinSize)
	assert.Equal(t, 8, sessions.MaxSize)
	assert.Equal(t, 2*time.Minute, sessions.MaxIdleTime)
	assert.Equal(t, 15*time.Second, sessions.HealthCheckInterval)
	assert.Equal(t, 5, sessions.HealthFailureLimit)

	// Unset sizing fields stay zero and get pool-level defaults later.
	assert.Equal(t, 0, cfg.Pools[1].MaxSize)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`pools: []`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":7070\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown backend",
			yaml: "pools:\n  - name: a\n    backend: ftp\n    address: x\n",
		},
		{
			name: "missing address",
			yaml: "pools:\n  - name: a\n    backend: tcp\n",
		},
		{
			name: "duplicate names",
			yaml: "pools:\n  - name: a\n    backend: tcp\n    address: x\n  - name: a\n    backend: tcp\n    address: y\n",
		},
		{
			name: "min over max",
			yaml: "pools:\n  - name: a\n    backend: tcp\n    address: x\n    min_size: 5\n    max_size: 2\n",
		},
		{
			name: "empty listen addr",
			yaml: "server:\n  listen_addr: \"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

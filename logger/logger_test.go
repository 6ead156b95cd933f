package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("pool initialized", "pool", "cache", "connections", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pool initialized", entry["msg"])
	assert.Equal(t, "cache", entry["pool"])
	assert.Equal(t, float64(3), entry["connections"])
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelWarn, Format: "text", Writer: &buf})

	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, LevelTrace, ParseLevel("TRACE"))
	assert.Equal(t, LevelFatal, ParseLevel("fatal"))
	assert.Equal(t, slog.Level(4), ParseLevel("4"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "TRACE", LevelName(LevelTrace))
	assert.Equal(t, "FATAL", LevelName(LevelFatal))
	assert.Equal(t, "INFO", LevelName(slog.LevelInfo))
}

func TestAppendContextArgs(t *testing.T) {
	ctx := context.WithValue(context.Background(), PoolKey, "docs")
	ctx = context.WithValue(ctx, RequestIDKey, "req-42")

	args := appendContextArgs(ctx, "k", "v")
	assert.Equal(t, []any{"k", "v", "pool", "docs", "request_id", "req-42"}, args)
}

func TestBufferedWriterFlush(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBufferedWriter(&buf, 64)

	_, err := bw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "small writes stay buffered")

	require.NoError(t, bw.Flush())
	assert.Equal(t, "hello", buf.String())
}

package logger

import (
	"log/slog"
	"strconv"
)

// Custom log levels
const (
	LevelTrace slog.Level = -8
	LevelFatal slog.Level = 12
)

// Level names for custom levels
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// LevelName returns the name of a log level
func LevelName(level slog.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return level.String()
}

// ParseLevel converts a level name (or integer) to a slog.Level.
// Unknown names fall back to Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "TRACE", "trace":
		return LevelTrace
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "INFO", "info":
		return slog.LevelInfo
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	case "FATAL", "fatal":
		return LevelFatal
	}
	if levelInt, err := strconv.Atoi(s); err == nil {
		return slog.Level(levelInt)
	}
	return slog.LevelInfo
}

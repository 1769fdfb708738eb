package log

import (
	"io"
	"log/slog"
	"strings"
)

// Config represents logging configuration.
type Config struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// DefaultConfig returns default logging configuration. Diagnostics stay quiet
// unless asked for, because stdout belongs to the report tables.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "text",
	}
}

// ParseLevel parses string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Configure builds a logger writing to w, installs it as the default and
// returns it.
func Configure(cfg Config, w io.Writer) Logger {
	level := ParseLevel(cfg.Level)

	var l Logger
	switch strings.ToLower(cfg.Format) {
	case "json":
		l = NewJSONLogger(w, level)
	default:
		l = NewTextLogger(w, level)
	}

	SetDefault(l)
	return l
}

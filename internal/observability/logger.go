package observability

import (
	"log/slog"
	"os"
)

// LoggerSettings is the subset of configuration the logger needs.
type LoggerSettings interface {
	LoggingLevel() string
	LoggingFormat() string
}

// NewLogger builds a slog.Logger writing to stdout. Format is "json" or
// "text"; level is one of debug/info/warn/error (unknown values fall back
// to info).
func NewLogger(settings LoggerSettings) *slog.Logger {
	var level slog.Level
	switch settings.LoggingLevel() {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if settings.LoggingFormat() == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

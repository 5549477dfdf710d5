package logging

import (
	"log/slog"
	"os"
)

// New builds the process logger and installs it as the slog default.
// Unknown levels fall back to info, unknown formats to json; logging setup
// must never be a reason a diagnostic run fails.
func New(logFormat, logLevel string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}

	var handler slog.Handler
	if logFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup creates the process logger, installs it as the slog default, and
// returns it. Level accepts "debug", "info", "warn" or "error"
// (case-insensitive); anything else means info. Logs are JSON on stdout so
// the hosting platform's collector can ingest them directly; set
// ROOMIES_LOG_FORMAT=text for a readable stream during local development.
func Setup(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("ROOMIES_LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

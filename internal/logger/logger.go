package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/questkit/quest-engine/internal/config"
)

const serviceName = "quest-engine"

// New builds the service logger writing to w. Production emits JSON for
// log shipping; everything else gets the text handler for readable local
// output. Every record carries the service name and environment.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", serviceName, "env", cfg.Environment)
}

// Setup builds the stdout logger and installs it as the slog default.
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

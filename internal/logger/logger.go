// Package logger builds the console's process-wide structured logger.
package logger

import (
	"log/slog"
	"os"

	"github.com/banking-fraud-console/internal/config"
)

// NewLogger creates the console's slog JSON logger. The configured level is
// parsed leniently and unknown values fall back to info. Every record carries
// the application name and environment so console logs stay distinguishable
// from the upstream transaction API's when both land in one aggregator.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Source locations only matter when someone is actively debugging
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	if cfg.Application.Name != "" {
		logger = logger.With("app", cfg.Application.Name, "env", cfg.Application.Env)
	}

	logger.Info("logger initialized", "level", level.String())

	return logger
}

// Package logging provides structured logging for the reconciliation
// backend. Text output is formatted as bracketed console lines:
//
//	[LEVEL] [SCOPE] [HH:MM:SS] message key=value
//
// with colors when stdout is a terminal; the "json" format switches to the
// standard slog JSON handler for log shippers.
package logging

import (
	"log/slog"
	"os"
)

// Config holds logging configuration.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" (default) or "json"
}

// NewLogger creates a structured logger from config.
func NewLogger(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(NewConsoleHandler(os.Stdout, opts))
}

// NewScopedLogger creates a logger with a scope prefix (e.g. "api", "recon",
// "ingest") shown in the bracketed header.
func NewScopedLogger(cfg Config, scope string) *slog.Logger {
	return NewLogger(cfg).With("scope", scope)
}

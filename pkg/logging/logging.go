// Package logging provides structured logging built on log/slog, with the
// level and output format driven by configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates a logger writing to stdout per the configuration.
func New(cfg *Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing to w per the configuration.
func NewWithWriter(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Level represents a logging severity level.
type Level string

// Log level constants.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Validate checks that the level is one of the known severities.
func (l Level) Validate() error {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l)
	}
}

// ToSlogLevel converts the Level to its slog.Level equivalent.
// Unknown levels default to slog.LevelInfo.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Format represents a log output format.
type Format string

// Log format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Validate checks that the format is one of the known outputs.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", f)
	}
}

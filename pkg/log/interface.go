// Package log provides structured logging for pipeline training and
// inference diagnostics.
//
// The package defines a minimal, slog-compatible Logger interface so the
// backend can be swapped without touching call sites. Two backends ship
// here: the default log/slog JSON provider (see provider.go) and an
// rs/zerolog provider (see zerolog.go). Stage and pipeline code obtains
// loggers through the package-level provider:
//
//	logger := log.GetLoggerWithName("pipeline")
//	logger.Info("position fitted",
//	    log.PositionKey, 2,
//	    log.StageNameKey, "PCA",
//	    log.SamplesKey, 480,
//	)
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs, the slog convention. With returns
// a derived logger carrying pre-populated fields, which verbose pipeline
// paths use to stamp every record with the pipeline name and position.
type Logger interface {
	// Debug logs detailed diagnostic information, typically disabled
	// outside development.
	Debug(msg string, fields ...any)

	// Info logs general operational information, e.g. how many
	// components a decomposition stage retained.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop a run but deserve
	// attention, such as a truncated component request.
	Warn(msg string, fields ...any)

	// Error logs failures. When a field value is an error produced by
	// pkg/errors, the backend extracts its stack trace into a
	// dedicated attribute.
	Error(msg string, fields ...any)

	// With returns a new Logger that includes the given fields in every
	// subsequent record.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given
	// level, so callers can skip building expensive field values.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level. Values match slog.Level so the two convert
// directly.
type Level int

// Standard levels, numerically compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the level's conventional upper-case name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. Swapping the provider via
// SetProvider switches the backend for the whole library, which tests use
// to capture output.
type LoggerProvider interface {
	// GetLogger returns the provider's root logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger stamped with a component name,
	// e.g. "pipeline" or "decomposition.pca".
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for all loggers from this provider.
	SetLevel(level Level)
}

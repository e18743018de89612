package log

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. Values that
// implement zerolog.LogObjectMarshaler (all pipekit error types do) are
// embedded as structured objects rather than stringified.
type ZerologLogger struct {
	z zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(z zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{z: z}
}

func (l *ZerologLogger) Debug(msg string, fields ...any) { l.emit(l.z.Debug(), msg, fields) }
func (l *ZerologLogger) Info(msg string, fields ...any)  { l.emit(l.z.Info(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...any)  { l.emit(l.z.Warn(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields ...any) { l.emit(l.z.Error(), msg, fields) }

func (l *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// With returns a logger with the fields attached to every record.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &ZerologLogger{z: ctx.Logger()}
}

// Enabled reports whether records at the given level would be emitted.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.z.GetLevel()
}

// toZerologLevel maps the slog-compatible Level values onto zerolog's scale.
func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider serves ZerologLogger instances from a shared root logger.
// Install it with SetProvider to switch the whole library onto zerolog.
type ZerologProvider struct {
	mu   sync.RWMutex
	root zerolog.Logger
}

// NewZerologProvider builds a provider that writes timestamped records to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	root := zerolog.New(w).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &ZerologProvider{root: root}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{z: p.root}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &ZerologLogger{z: p.root.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = p.root.Level(toZerologLevel(level))
}

// RouteWarningsTo redirects library warnings (errors.Warn) to the given
// zerolog logger. Warnings that implement LogObjectMarshaler, such as
// ComponentTruncationWarning, are embedded with their structured fields.
func RouteWarningsTo(logger zerolog.Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		ev := logger.Warn()
		if obj, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(obj)
		}
		ev.Msg(w.Error())
	})
}

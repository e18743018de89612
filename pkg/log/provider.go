package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	s *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(s *slog.Logger) Logger {
	return &slogLogger{s: s}
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.s.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.s.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.s.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.s.Error(msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{s: l.s.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.s.Enabled(ctx, slog.Level(level))
}

// SlogProvider is the default LoggerProvider. It emits JSON records through
// the ErrFmtHandler stack so error fields carry their stack traces.
type SlogProvider struct {
	level *slog.LevelVar
	root  *slog.Logger
}

// NewSlogProvider builds a provider writing JSON records to w at the given
// minimum level.
func NewSlogProvider(w io.Writer, level Level) *SlogProvider {
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(level))
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	return &SlogProvider{
		level: lv,
		root:  slog.New(WrapByErrFmtHandler(handler)),
	}
}

// GetLogger implements LoggerProvider.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{s: p.root}
}

// GetLoggerWithName implements LoggerProvider.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{s: p.root.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider. Safe for concurrent use; the level
// is read atomically by every handler sharing it.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewSlogProvider(os.Stderr, LevelInfo)
)

// SetProvider replaces the package-level provider. Passing nil is a no-op.
// Tests install a TestLoggerProvider here to capture verbose output.
func SetProvider(p LoggerProvider) {
	if p == nil {
		return
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the current provider's root logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger stamped with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel adjusts the current provider's minimum level.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}

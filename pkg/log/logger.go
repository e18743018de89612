package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs a JSON slog handler wrapped by ErrFmtHandler as the
// process-wide slog default. Library code goes through the provider in
// provider.go; this is for binaries that want the same handler stack on
// plain slog calls.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name to slog.Level. Unknown names panic;
// level strings come from static configuration, not user data.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps err so ErrFmtHandler recognizes it and extracts the
// cockroachdb/errors stack trace.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

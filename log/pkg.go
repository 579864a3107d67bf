package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// DefaultContextProvider returns the context used by the logging functions
// and methods that take no context.
//
//nolint:gochecknoglobals
var DefaultContextProvider = context.TODO

// defaultLog writes to standard error so that converted documents written to
// standard output are never interleaved with log records.
//
//nolint:gochecknoglobals
var defaultLog atomic.Pointer[Logger]

func init() {
	l := Make(os.Stderr)
	defaultLog.Store(&l)
}

// Default returns the package-level [Logger].
func Default() Logger { return *defaultLog.Load() }

// Config reconfigures the package-level [Logger] with opts.
func Config(opts ...Option) {
	l := Default().Wrap(opts...)
	defaultLog.Store(&l)
}

// The package-level functions call [Logger.log] directly, so their skip
// count matches that of the methods.

// TraceContext logs at [LevelTrace] using the package-level [Logger].
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, callerSkip, LevelTrace, msg, attrs)
}

// Trace logs at [LevelTrace] using the package-level [Logger].
func Trace(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), callerSkip, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug] using the package-level [Logger].
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, callerSkip, LevelDebug, msg, attrs)
}

// Debug logs at [LevelDebug] using the package-level [Logger].
func Debug(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), callerSkip, LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo] using the package-level [Logger].
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, callerSkip, LevelInfo, msg, attrs)
}

// Info logs at [LevelInfo] using the package-level [Logger].
func Info(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), callerSkip, LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn] using the package-level [Logger].
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, callerSkip, LevelWarn, msg, attrs)
}

// Warn logs at [LevelWarn] using the package-level [Logger].
func Warn(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), callerSkip, LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError] using the package-level [Logger].
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, callerSkip, LevelError, msg, attrs)
}

// Error logs at [LevelError] using the package-level [Logger].
func Error(msg string, attrs ...slog.Attr) {
	Default().log(DefaultContextProvider(), callerSkip, LevelError, msg, attrs)
}

// With returns a copy of the package-level [Logger] carrying attrs.
func With(attrs ...slog.Attr) Logger {
	return Default().With(attrs...)
}

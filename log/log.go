package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

// Logger is a leveled structured logger. Loggers are immutable values and
// safe for concurrent use. The zero Logger discards everything.
type Logger struct {
	*slog.Logger

	settings settings
	attrs    []slog.Attr
}

// Make creates a [Logger] that writes to w, configured by [DefaultLevel],
// [DefaultFormat], [DefaultTimeLayout], [DefaultCaller] and [DefaultPretty]
// unless overridden by opts.
func Make(w io.Writer, opts ...Option) Logger {
	return build(defaults(w).with(opts...), nil)
}

func build(s settings, attrs []slog.Attr) Logger {
	h := s.handler()
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}

	return Logger{Logger: slog.New(h), settings: s, attrs: attrs}
}

// Wrap returns a copy of l reconfigured by opts. Attributes added with
// [Logger.With] are kept.
func (l Logger) Wrap(opts ...Option) Logger {
	if l.Logger == nil {
		return l
	}

	return build(l.settings.with(opts...), l.attrs)
}

// With returns a copy of l that adds attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil || len(attrs) == 0 {
		return l
	}

	return Logger{
		Logger:   slog.New(l.Handler().WithAttrs(attrs)),
		settings: l.settings,
		attrs:    append(slices.Clip(l.attrs), attrs...),
	}
}

// Level returns the minimum level of records that are written.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	return l.settings.level
}

// Format returns the output format.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	return l.settings.format
}

// TraceContext logs at [LevelTrace].
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, callerSkip, LevelTrace, msg, attrs)
}

// Trace logs at [LevelTrace] with [DefaultContextProvider].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), callerSkip, LevelTrace, msg, attrs)
}

// DebugContext logs at [LevelDebug].
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, callerSkip, LevelDebug, msg, attrs)
}

// Debug logs at [LevelDebug] with [DefaultContextProvider].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), callerSkip, LevelDebug, msg, attrs)
}

// InfoContext logs at [LevelInfo].
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, callerSkip, LevelInfo, msg, attrs)
}

// Info logs at [LevelInfo] with [DefaultContextProvider].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), callerSkip, LevelInfo, msg, attrs)
}

// WarnContext logs at [LevelWarn].
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, callerSkip, LevelWarn, msg, attrs)
}

// Warn logs at [LevelWarn] with [DefaultContextProvider].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), callerSkip, LevelWarn, msg, attrs)
}

// ErrorContext logs at [LevelError].
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, callerSkip, LevelError, msg, attrs)
}

// Error logs at [LevelError] with [DefaultContextProvider].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(DefaultContextProvider(), callerSkip, LevelError, msg, attrs)
}

// callerSkip is the number of frames between runtime.Callers and the caller
// of a logging method: runtime.Callers, log, and the method itself.
const callerSkip = 3

// log writes a record whose source is the caller skip frames up the stack.
func (l Logger) log(
	ctx context.Context,
	skip int,
	level Level,
	msg string,
	attrs []slog.Attr,
) {
	if l.Logger == nil || !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	var pcs [1]uintptr
	if l.settings.caller {
		runtime.Callers(skip, pcs[:])
	}

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	_ = l.Handler().Handle(ctx, r)
}

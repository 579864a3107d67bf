package cmd

import (
	"log/slog"
	"strings"
)

// Error is a command failure with attributes for structured logging.
//
// Errors derived from a sentinel by [Error.Wrap] or [Error.With] match the
// sentinel with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel command error.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface as "<msg>: <cause>", omitting either
// part when empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a command error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}

var (
	ErrReadSource    = NewError("read source")
	ErrWriteOutput   = NewError("write output")
	ErrInvalidFormat = NewError("invalid output format")
	ErrWriteConfig   = NewError("write configuration file")
	ErrFileExists    = NewError("file exists (use --force to overwrite)")
)

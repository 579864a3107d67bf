package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every failure reported by the parser wraps exactly one of these, so callers
// can classify errors with [errors.Is].
var (
	ErrInvalidConstantDeclaration   = NewError("invalid constant declaration")
	ErrInvalidDictionaryDeclaration = NewError("invalid dictionary declaration")
	ErrMissingSemicolon             = NewError("expected ';' at end of line")
	ErrInvalidAssignment            = NewError("invalid assignment in dictionary")
	ErrDuplicateKey                 = NewError("duplicate key")
	ErrUnterminatedDictionary       = NewError("expected 'end;' to close dictionary")
	ErrUnknownValue                 = NewError("unknown value")
	ErrUnknownConstruct             = NewError("unknown construct")
	ErrInvalidArraySyntax           = NewError("invalid array syntax")
	ErrInsufficientOperands         = NewError("insufficient operands for operator")
	ErrUnknownToken                 = NewError("unknown token in expression")
	ErrInvalidExpression            = NewError("invalid expression")
	ErrDivisionByZero               = NewError("division by zero")
	ErrModRequiresIntegers          = NewError("operator 'mod()' requires integer operands")
	ErrNonNumericOperand            = NewError("non-numeric operand in expression")
	ErrIntegerOverflow              = NewError("integer overflow in expression")
	ErrNonFiniteResult              = NewError("expression result is not a finite number")
	ErrMaxDepthExceeded             = NewError("maximum dictionary depth exceeded")
	ErrReadInput                    = NewError("failed to read input")
	ErrQueryCompile                 = NewError("query compilation failed")
	ErrQueryEvaluate                = NewError("query evaluation failed")
)

// Error represents an error with optional structured logging attributes and
// the 1-based source line it was detected on (0 if unknown).
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	line  int
	kind  *Error      // Sentinel this error was derived from
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The format is "line <n>: <msg>: <err> (<key>=<value>, ...)", omitting each
// part that is not set.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.line > 0 {
		part = append(part, "line "+strconv.Itoa(e.line))
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if len(e.attrs) > 0 {
		kv := make([]string, 0, len(e.attrs))
		for _, a := range e.attrs {
			kv = append(kv, formatAttr(a))
		}

		s += " (" + strings.Join(kv, ", ") + ")"
	}

	return s
}

func formatAttr(a slog.Attr) string {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindString {
		return a.Key + "=" + strconv.Quote(v.String())
	}

	return a.Key + "=" + fmt.Sprint(v.Any())
}

// Line returns the 1-based source line the error was detected on, or 0.
func (e *Error) Line() int { return e.line }

// Message returns the error message without line or attributes.
func (e *Error) Message() string { return e.msg }

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.line > 0 {
		attrs = append(attrs, slog.Int("line", e.line))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// derive copies e, remembering the sentinel it came from.
func (e *Error) derive() *Error {
	kind := e.kind
	if kind == nil {
		kind = e
	}

	return &Error{
		msg:   e.msg,
		line:  e.line,
		kind:  kind,
		err:   e.err,
		attrs: e.attrs, // Share attrs
	}
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// AtLine returns a copy of e reporting the given 1-based line number.
func (e *Error) AtLine(line int) *Error {
	d := e.derive()
	d.line = line

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	d := e.derive()
	d.attrs = newAttrs

	return d
}

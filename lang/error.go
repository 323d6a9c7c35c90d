package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from these with [Error.With] or
// [Error.Wrap] and still satisfy errors.Is against the sentinel.
var (
	ErrTokenize             = NewError("tokenize failed")
	ErrUnexpectedToken      = NewError("unexpected token")
	ErrUnexpectedEOF        = NewError("unexpected end of input")
	ErrUnexpectedIdentifier = NewError("unexpected identifier")
	ErrEmptyFieldValue      = NewError("empty field value")
	ErrUndefinedRecord      = NewError("undefined record")
	ErrCyclicDependency     = NewError("cyclic dependency")
	ErrUndefinedField       = NewError("undefined field")
	ErrCyclicFieldReference = NewError("cyclic field reference")
	ErrReadInput            = NewError("failed to read input")
	ErrInvalidFilter        = NewError("invalid filter")
	ErrUnknownFormat        = NewError("unknown format")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind  *Error      // sentinel this error derives from
	msg   string      // sentinel message
	err   error       // wrapped error (for errors.Unwrap)
	attrs []slog.Attr // attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is an *Error, it is returned unchanged.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.kind = e

	return e
}

// Error implements the error interface.
//
// The message has the form "<msg> key=value ...: <cause>" where each part
// is omitted when empty.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.msg)

	for _, a := range e.attrs {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(a.Value.String())
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Attr returns the string form of the first attribute named key.
func (e *Error) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value.String(), true
		}
	}

	return "", false
}

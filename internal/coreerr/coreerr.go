// Package coreerr defines the closed set of error kinds the scheduling
// core surfaces to its callers.
package coreerr

import (
	"errors"
	"fmt"
)

// Kind is a closed enum of error categories the core can return.
type Kind string

const (
	// Validation covers malformed input, inverted intervals, and illegal
	// state transitions.
	Validation Kind = "validation"
	// NotFound covers references to absent bookings, event types, or
	// organizations.
	NotFound Kind = "not_found"
	// Conflict covers slot/resource overlap and duplicate slugs.
	Conflict Kind = "conflict"
	// Forbidden covers a tenant mismatch escaping interceptor scoping.
	Forbidden Kind = "forbidden"
	// Transient covers lock-store or queue I/O failures on best-effort
	// paths; callers on those paths should log and continue rather than
	// fail the operation.
	Transient Kind = "transient"
	// Fatal covers storage transaction failures on the commit path.
	Fatal Kind = "fatal"
)

// Error is the error type returned by the core. It wraps an underlying
// cause so callers can still use errors.Is/errors.As on it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, other) matches any two core errors of one kind;
// callers can also compare kinds directly with As.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }
func NotFoundf(format string, args ...any) *Error    { return newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error    { return newf(Conflict, format, args...) }
func Forbiddenf(format string, args ...any) *Error   { return newf(Forbidden, format, args...) }
func Transientf(format string, args ...any) *Error   { return newf(Transient, format, args...) }
func Fatalf(format string, args ...any) *Error       { return newf(Fatal, format, args...) }

func WrapValidation(err error, format string, args ...any) *Error {
	return wrapf(Validation, err, format, args...)
}
func WrapNotFound(err error, format string, args ...any) *Error {
	return wrapf(NotFound, err, format, args...)
}
func WrapConflict(err error, format string, args ...any) *Error {
	return wrapf(Conflict, err, format, args...)
}
func WrapTransient(err error, format string, args ...any) *Error {
	return wrapf(Transient, err, format, args...)
}
func WrapFatal(err error, format string, args ...any) *Error {
	return wrapf(Fatal, err, format, args...)
}

// KindOf extracts the Kind of err, defaulting to Fatal for errors not
// produced by this package (an unclassified failure on the commit path
// should not be swallowed).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Fatal
}

// Package apperr defines the error taxonomy shared by repositories, the
// authorization guard and the operation handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the response envelope.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindForbidden        Kind = "FORBIDDEN"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindInternal         Kind = "INTERNAL"
)

// Error is a classified error. Message is safe to show to callers; Err is the
// underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrValidationFailed = &Error{Kind: KindValidationFailed}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrInternal         = &Error{Kind: KindInternal}
)

func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func Validation(msg string) *Error { return &Error{Kind: KindValidationFailed, Message: msg} }

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Internal wraps an unexpected failure. The cause never reaches callers.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message of err. Unclassified errors yield
// an empty string so callers substitute their own generic text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ""
}

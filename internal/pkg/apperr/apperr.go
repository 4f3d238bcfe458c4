// Package apperr carries the error taxonomy shared by every art operation.
//
// Domain code returns *Error values tagged with a Kind. The HTTP boundary
// translates the Kind to a status exactly once (see StatusOf); anything that is
// not an *Error is treated as INTERNAL_ERROR and its detail stays in the logs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindAuthority  Kind = "AUTHORITY_ERROR"
	KindForbidden  Kind = "FORBIDDEN"
	KindNotFound   Kind = "NOT_FOUND"
	KindLimit      Kind = "LIMIT_EXCEEDED"
	KindStorage    Kind = "STORAGE_FAILURE"
	KindInternal   Kind = "INTERNAL_ERROR"
)

// statusByKind is the single translation table from taxonomy kind to HTTP status.
var statusByKind = map[Kind]int{
	KindValidation: http.StatusBadRequest,
	KindAuthority:  http.StatusUnauthorized,
	KindForbidden:  http.StatusForbidden,
	KindNotFound:   http.StatusNotFound,
	KindLimit:      http.StatusUnprocessableEntity,
	KindStorage:    http.StatusServiceUnavailable,
	KindInternal:   http.StatusInternalServerError,
}

// Error is a domain failure tagged with its taxonomy kind.
// Message is safe to show to clients; Cause is for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Kind so sentinel values can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func Authority(message string) *Error  { return New(KindAuthority, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func NotFound(resource string) *Error  { return New(KindNotFound, resource+" not found") }
func Limit(message string) *Error      { return New(KindLimit, message) }

func Storage(cause error) *Error {
	return Wrap(KindStorage, "file storage is unavailable", cause)
}

func Internal(cause error) *Error {
	return Wrap(KindInternal, "an unexpected error occurred", cause)
}

// Sentinels for errors.Is checks; they match any error of the same kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuthority  = &Error{Kind: KindAuthority}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrLimit      = &Error{Kind: KindLimit}
	ErrStorage    = &Error{Kind: KindStorage}
	ErrInternal   = &Error{Kind: KindInternal}
)

// From returns the *Error inside err, or an INTERNAL_ERROR wrapping it.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

func StatusOf(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Package apperrors holds the error categories shared by services and
// controllers. Callers match them with errors.Is; the wrapped message is
// safe to show to API clients.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or semantically invalid input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing entity or one the caller does not own.
	ErrNotFound = errors.New("not found")
	// ErrAuthentication marks bad credentials or an inactive account.
	ErrAuthentication = errors.New("authentication failed")
	// ErrConflict marks a uniqueness violation detected by the database.
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message and the category it belongs to.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation returns an error matching ErrValidation.
func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// NotFound returns an error matching ErrNotFound.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// Authentication returns an error matching ErrAuthentication.
func Authentication(format string, args ...any) error {
	return newError(ErrAuthentication, format, args...)
}

// Conflict returns an error matching ErrConflict.
func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// Message returns the client-facing text of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return fallback
}

// Package common defines the error kinds shared by services and handlers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Bad or missing input.
	ErrValidation = errors.New("validation error")

	// Bad credentials or missing session.
	ErrUnauthorized = errors.New("unauthorized")

	// Duplicate resource or write-once violation.
	ErrConflict = errors.New("conflict")

	// Test resubmitted inside its cooldown window.
	ErrCooldown = errors.New("cooldown active")

	ErrNotFound = errors.New("not found")

	// Underlying store failure.
	ErrStorage = errors.New("storage error")
)

// Error carries a kind from the list above, a message that is safe to show
// to the client and an optional underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func Cooldown(msg string) error {
	return &Error{Kind: ErrCooldown, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Storage wraps a store failure. The message stays generic; the cause is kept
// for server-side logs.
func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Message: op, Err: err}
}

// Message returns the client-facing text of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrStorage && e.Message != "" {
		return e.Message
	}
	return fallback
}

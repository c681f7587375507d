// Package errors provides structured error types for lightlayer.
//
// Errors carry a machine-readable [Code] so the HTTP surface and the CLI can
// react to a failure class without string matching:
//   - INVALID_*: rejected input or an operation called in the wrong state
//   - UNKNOWN_NODE / NOT_FOUND: a name or slot that resolves to nothing
//   - STORE_ERROR / SCRIPT_ERROR: a failing backend or live script
//
// Capacity overflows during layout are deliberately not errors; they are
// clamped and show up in the diagnostics report instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownNode, "no node named %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    // respond 404
//	}
//
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "save preset %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidState  Code = "INVALID_STATE"
	ErrCodeInvalidSlot   Code = "INVALID_SLOT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resolution errors
	ErrCodeUnknownNode Code = "UNKNOWN_NODE"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Collaborator errors
	ErrCodeStore  Code = "STORE_ERROR"
	ErrCodeScript Code = "SCRIPT_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

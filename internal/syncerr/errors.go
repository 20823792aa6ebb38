// Package syncerr defines the error taxonomy shared by every stage of a
// sync pass.
//
// Errors carry a Code so the orchestrator can record a machine-readable
// category on a failed tenant result without inspecting message text.
package syncerr

import (
	"context"
	"errors"
	"fmt"
)

// Code categorizes a sync error.
type Code string

const (
	// CodeConfigIncomplete indicates a tenant is missing required fields.
	// The tenant is rejected before any network call.
	CodeConfigIncomplete Code = "CONFIG_INCOMPLETE"

	// CodeUpstreamUnavailable indicates the order API was unreachable or
	// answered with a non-2xx status.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"

	// CodeDestinationUnavailable indicates a read or write against the
	// destination failed.
	CodeDestinationUnavailable Code = "DESTINATION_UNAVAILABLE"

	// CodeSchemaMismatch indicates the dedup-key column is missing from an
	// existing header. Nothing is written or cleared.
	CodeSchemaMismatch Code = "SCHEMA_MISMATCH"

	// CodeCancelled indicates the pass was cancelled before the tenant ran.
	CodeCancelled Code = "CANCELLED"

	// CodeUnknown is reported by CodeOf for errors outside the taxonomy.
	CodeUnknown Code = "UNKNOWN"
)

// Error is a categorized sync failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed ("list orders", "read header").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause.
func New(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap categorizes err. A nil err returns nil. An err that already carries a
// code keeps it; Wrap only adds the operation context.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		code = CodeCancelled
	}
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the code carried by err, or CodeUnknown.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

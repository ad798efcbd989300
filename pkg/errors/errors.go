// Package errors provides structured error types for relink.
//
// Every failure that reaches the command line carries a machine-readable
// [Code] so callers can tell recoverable conditions (an install that failed,
// a package that vanished from the database) from fatal ones (a query that
// failed, a dependency cycle, a tool that timed out).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDependencyCycle, "cannot order %d packages", n)
//	if errors.Is(err, errors.ErrCodeDependencyCycle) {
//	    // manual intervention required
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeToolFailure, origErr, "query files of %s", pkg)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// External tool errors
	ErrCodeToolFailure   Code = "TOOL_FAILURE"
	ErrCodeTimeout       Code = "TIMEOUT"
	ErrCodeInstallFailed Code = "INSTALL_FAILED"

	// Package database errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Planning errors
	ErrCodeDependencyCycle Code = "DEPENDENCY_CYCLE"
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
// For *Error types, returns the message followed by the cause, without the
// code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// ToolError describes an external process that exited unsuccessfully.
// Stderr holds the tool's own diagnostic text, trimmed of trailing newlines.
type ToolError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

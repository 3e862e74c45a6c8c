// Package errors provides structured error types for secure-sum.
//
// Every failure that leaves a package carries a machine-readable [Code] so
// the CLI can tell configuration mistakes, per-target failures and systemic
// conditions (timeouts, rate limits) apart without string matching.
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_*: configuration or input rejected before any work starts
//   - *_FAILED: a single target could not be evaluated
//   - TIMEOUT, RATE_LIMITED, NETWORK_ERROR: systemic conditions
//   - SCORE_TOO_LOW: the deliberate non-zero exit after a complete report
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unable to understand %s", raw)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle input error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input and configuration errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidMetric   Code = "INVALID_METRIC"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeIO       Code = "IO_ERROR"

	// Per-target errors
	ErrCodeResolution Code = "RESOLUTION_FAILED"
	ErrCodeRunner     Code = "RUNNER_FAILED"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Evaluation outcome
	ErrCodeScoreTooLow Code = "SCORE_TOO_LOW"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Fixed user-facing messages.
const (
	MsgTimeout     = "The evaluation timed out. Perhaps you have hit a rate limit."
	MsgScoreTooLow = "At least one probed repo has a score that is unacceptably low."
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

// Timeout returns the run-aborting timeout error.
func Timeout(cause error) *Error {
	return Wrap(ErrCodeTimeout, cause, MsgTimeout)
}

// ScoreTooLow returns the error reported after a complete report when at
// least one target fell below the error threshold.
func ScoreTooLow() *Error {
	return New(ErrCodeScoreTooLow, MsgScoreTooLow)
}

// Is reports whether any *Error in err's chain has the given code, so a
// NOT_FOUND cause stays visible below a RESOLUTION_FAILED wrapper.
func Is(err error, code Code) bool {
	for {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
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
// For *Error types, returns the message chain without code prefixes.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil && e.Code != ErrCodeTimeout && e.Code != ErrCodeScoreTooLow {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

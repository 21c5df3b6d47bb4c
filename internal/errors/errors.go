// Package errors provides the structured error type used at the I/O boundaries of
// the conversion pipeline.
//
// Errors carry a machine-readable Code so that the command-line driver can map a
// failure to an exit status without string matching:
//
//   - CodeInput: the source image could not be opened or decoded
//   - CodeOutput: the layout stream could not be written
//   - CodeDegenerate: a polygon collapsed during simplification or quantization
//   - CodeConfig: the configuration file or a tunable value is invalid
//
// Degenerate geometry is recovered inside the pipeline and never escapes a run; the
// code exists so that stage-local errors can still be classified in logs.
//
// # Usage
//
//	err := errors.Wrap(errors.CodeInput, cause, "failed to load %s", path)
//	if errors.Is(err, errors.CodeInput) {
//	    os.Exit(2)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the conversion pipeline.
const (
	CodeInput      Code = "INPUT_ERROR"
	CodeOutput     Code = "OUTPUT_ERROR"
	CodeDegenerate Code = "DEGENERATE_GEOMETRY"
	CodeConfig     Code = "INVALID_CONFIG"
	CodeInternal   Code = "INTERNAL_ERROR"
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

// Package errors defines the stable error code system for tracecheck.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract for harnesses that parse stderr.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Input error codes
	EReadFailed     Code = "E_READ_FAILED"     // log or capture file could not be read
	ENoTraceData    Code = "E_NO_TRACE_DATA"   // atrace output has no TRACE: marker
	EInvalidProfile Code = "E_INVALID_PROFILE" // profile file unreadable or invalid
	EPersistFailed  Code = "E_PERSIST_FAILED"  // verify record could not be written
	ERunNotFound    Code = "E_RUN_NOT_FOUND"   // no verify record for the requested run
	ERunAmbiguous   Code = "E_RUN_AMBIGUOUS"   // run id prefix matches several runs

	// Verification error codes
	ENoRelevantEvents Code = "E_NO_RELEVANT_EVENTS" // subject never traced
	ESectionsMissing  Code = "E_SECTIONS_MISSING"   // required sections not seen in order
	EPIDMismatch      Code = "E_PID_MISMATCH"       // subject events attributed to different pids
	EInvalidEvent     Code = "E_INVALID_EVENT"      // relevant event violates event invariants

	// atrace output checks
	EUnexpectedOutput  Code = "E_UNEXPECTED_OUTPUT"  // output does not have the expected shape
	ECategoriesMissing Code = "E_CATEGORIES_MISSING" // required categories absent from --list_categories
)

// TraceError is the standard error type for tracecheck errors.
type TraceError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *TraceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TraceError) Unwrap() error {
	return e.Cause
}

// ExitCodeError wraps an error with an explicit process exit code.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

// WithExitCode wraps err with a specific process exit code.
func WithExitCode(err error, code int) error {
	return &ExitCodeError{Err: err, Code: code}
}

// New creates a new TraceError with the given code and message.
func New(code Code, msg string) error {
	return &TraceError{Code: code, Msg: msg}
}

// NewWithDetails creates a new TraceError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &TraceError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new TraceError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &TraceError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new TraceError wrapping an underlying error with details.
// Details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &TraceError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a TraceError.
func GetCode(err error) Code {
	var te *TraceError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// AsTraceError returns (*TraceError, true) if err is or wraps a TraceError.
func AsTraceError(err error) (*TraceError, bool) {
	var te *TraceError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var te *TraceError
	if errors.As(err, &te) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", te.Code)
		_, _ = fmt.Fprintln(w, te.Msg)
	} else {
		_, _ = fmt.Fprintln(w, err.Error())
	}
}

// Package apierror provides the error vocabulary shared by every SandGrid
// SDK package. It combines sentinel errors for errors.Is matching with
// string error codes for API serialization and retry classification.
package apierror

import (
	"errors"
	"fmt"
)

// Code identifies a specific error condition reported by the SDK or the
// remote service. Codes are string-based for debuggability and natural
// JSON serialization.
type Code string

const (
	// CodeInvalidInput indicates the caller supplied invalid arguments.
	// Rejected before any remote call is made.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthorized indicates the request lacks valid credentials.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeToolError indicates the remote tool executed and reported failure.
	CodeToolError Code = "TOOL_ERROR"

	// CodeNetwork indicates the request never produced a valid response.
	CodeNetwork Code = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout Code = "TIMEOUT"

	// CodeInternal indicates an internal error in the SDK or service.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Sentinel errors for errors.Is matching across packages
var (
	// ErrEmptyPath indicates a file operation was given an empty path
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrInvalidWriteMode indicates a write mode other than overwrite/append
	ErrInvalidWriteMode = errors.New("invalid write mode")

	// ErrInvalidChunkSize indicates a negative transfer chunk size
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrSessionNotFound indicates the session does not exist remotely
	ErrSessionNotFound = errors.New("session not found")

	// ErrToolFailed indicates the remote tool reported an error result
	ErrToolFailed = errors.New("tool execution failed")

	// ErrTransport indicates a network-level failure
	ErrTransport = errors.New("transport error")

	// ErrWatcherStopped indicates a watcher cannot be restarted after stop
	ErrWatcherStopped = errors.New("watcher cannot be restarted after stop")
)

// APIError carries a code, the failing operation, and the underlying cause.
type APIError struct {
	// Code classifies the failure
	Code Code

	// Op names the operation that failed (e.g. "filesystem.read_file")
	Op string

	// Message is the human-readable description surfaced to callers
	Message string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class is worth retrying.
// Validation and tool-level failures are not; transport-level ones are.
func (e *APIError) Retryable() bool {
	switch e.Code {
	case CodeNetwork, CodeTimeout:
		return true
	default:
		return false
	}
}

// New creates an APIError without an underlying cause
func New(code Code, op, message string) *APIError {
	return &APIError{Code: code, Op: op, Message: message}
}

// Wrap creates an APIError around an underlying cause
func Wrap(code Code, op, message string, err error) *APIError {
	return &APIError{Code: code, Op: op, Message: message, Err: err}
}

// CodeOf extracts the error code from an error chain.
// Returns CodeInternal when no APIError is present.
func CodeOf(err error) Code {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeInternal
}

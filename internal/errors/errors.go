package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, subprocess, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for the failure taxonomy. Every failure path surfaces
// one of these (or a wrapped variant) so callers can tell a policy refusal
// from filesystem trouble.
var (
	// ErrTargetBusy indicates another invocation holds the target lock.
	// Fatal for this invocation, safe to retry later, nothing was mutated.
	ErrTargetBusy = errors.New("target busy")

	// ErrSourceNotReachable indicates the configured source cannot be read.
	ErrSourceNotReachable = errors.New("source not reachable")

	// ErrSyncFailed indicates the transfer tool reported failure. The
	// staging area was discarded; prior snapshots are untouched.
	ErrSyncFailed = errors.New("sync failed")

	// ErrCommitFailed indicates the snapshot primitive failed after a
	// successful transfer. This points at filesystem-level trouble and is
	// flagged loudly.
	ErrCommitFailed = errors.New("snapshot commit failed")

	// ErrUnknownTarget indicates the named target is not in the config.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI use.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check the config file, or run: snapback init",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

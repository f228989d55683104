// Package errors provides error handling conventions for the snapback CLI.
//
// This package defines sentinel errors for the failure taxonomy of backup
// operations, an ExitError type for CLI exit code handling, and exit code
// constants following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific failure conditions
// using [errors.Is]:
//
//	if errors.Is(err, snaperrors.ErrTargetBusy) {
//	    // another invocation is running; retry later
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, lock contention)
//   - ExitSystem (2): System-related error (I/O, subprocess, filesystem)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports error unwrapping via [errors.Unwrap] and [errors.As]:
//
//	err := snaperrors.NewUserError(snaperrors.ErrUnknownTarget, "Check target names with: snapback list")
//	var exitErr *snaperrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors

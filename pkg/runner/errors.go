package runner

import "errors"

// Process exit codes.
const (
	ExitClean    = 0 // No problems reported.
	ExitProblems = 1 // At least one diagnostic or per-file failure.
	ExitUsage    = 2 // Fatal configuration or usage error.
	ExitFinalize = 3 // A report or metrics output could not be completed.
)

var (
	// ErrNoInputFiles indicates that collection produced no files.
	ErrNoInputFiles = errors.New("No input files")

	// ErrFileRead indicates a collected file could not be read or decoded.
	// It is recoverable: the failure is reported and the run continues.
	ErrFileRead = errors.New("cannot read file")

	// ErrFinalize indicates report sinks or the metrics file failed at the end of a run.
	ErrFinalize = errors.New("cannot complete report output")
)

// StateError is a fatal error together with the state it occurred in.
type StateError struct {
	State State
	Err   error
}

// Error returns the message of the underlying error.
func (e *StateError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StateError) Unwrap() error {
	return e.Err
}

// ExitCode maps the outcome of Run to a process exit code.
func ExitCode(res Result, err error) int {
	var serr *StateError
	switch {
	case errors.As(err, &serr):
		return ExitUsage
	case errors.Is(err, ErrFinalize):
		return ExitFinalize
	case err != nil:
		return ExitUsage
	case res.Diagnostics > 0 || res.FileFailures > 0:
		return ExitProblems
	default:
		return ExitClean
	}
}

// Package engine is the boundary to the external lint engine.
//
// The orchestration core only needs three things from an engine: load it,
// configure it once for the run, and check one file's source text at a
// time. Engine captures that contract; Process implements it by running a
// JSHint-compatible executable.
package engine

import (
	"context"
	"errors"
	"fmt"

	"hintrun/pkg/report"
)

// Sentinel errors for the engine package.
var (
	// ErrLoadFailure indicates the engine could not be found or started.
	ErrLoadFailure = errors.New("failed to load JSHint library")

	// ErrNotLoaded indicates Configure or Check was called before Load.
	ErrNotLoaded = errors.New("engine not loaded")

	// ErrCheckFailed indicates the engine process failed on a file.
	ErrCheckFailed = errors.New("engine check failed")
)

// Options are engine options applied once for a whole run.
type Options map[string]any

// Engine is the narrow contract of the external lint engine.
type Engine interface {
	// Load prepares the engine. An empty custom path selects the default
	// engine; otherwise custom names an alternate engine implementation.
	Load(ctx context.Context, custom string) error

	// Configure applies options for the remainder of the run.
	Configure(opts Options) error

	// Check analyzes one file's full text and pushes every diagnostic to r
	// in the order the engine reports them.
	Check(ctx context.Context, source string, r report.Receiver) error

	// Close releases anything the engine holds for the run.
	Close() error
}

// EngineError wraps an error from a specific engine command with context.
type EngineError struct {
	// Command is the engine executable.
	Command string

	// Err is the underlying error.
	Err error

	// Output contains any stderr output from the engine.
	Output string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EngineError) Unwrap() error {
	return e.Err
}

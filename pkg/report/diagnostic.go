// Package report fans lint diagnostics out to the configured output sinks.
//
// A run always has a console sink and at most one file sink. The sinks are
// told which file is active before that file's diagnostics arrive, since the
// engine itself does not tag diagnostics with a filename.
package report

import (
	"fmt"
	"strings"
)

// Severity is the severity level of a diagnostic.
type Severity int

const (
	// SeverityInfo marks informational messages (JSHint "I" codes).
	SeverityInfo Severity = iota

	// SeverityWarning marks warnings (JSHint "W" codes and anything unknown).
	SeverityWarning

	// SeverityError marks errors (JSHint "E" codes and file failures).
	SeverityError
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// SeverityFromCode derives a severity from an engine rule code.
// JSHint prefixes its codes with E, W or I; anything else is a warning.
func SeverityFromCode(code string) Severity {
	switch {
	case strings.HasPrefix(code, "E"):
		return SeverityError
	case strings.HasPrefix(code, "I"):
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// Diagnostic is one problem reported for the active file.
type Diagnostic struct {
	Line      int      // 1-based line; 0 when the problem is not tied to a line
	Character int      // 1-based column; 0 when unknown
	Code      string   // engine rule code such as "W033", may be empty
	Severity  Severity // derived from Code by the engine adapter
	Message   string   // human readable reason
}

// Format renders the diagnostic for the given file in the line format shared
// by the console and text sinks.
func (d Diagnostic) Format(file string) string {
	line := fmt.Sprintf("%s: line %d, col %d, %s", file, d.Line, d.Character, d.Message)
	if d.Code != "" {
		line += " (" + d.Code + ")"
	}
	return line
}

// Receiver accepts diagnostics for the currently active file.
type Receiver interface {
	Receive(d Diagnostic)
}

// Sink is one output destination. SetActiveFile is called before a file's
// diagnostics arrive; Finalize releases the sink's resource and must be safe
// to call more than once.
type Sink interface {
	Receiver
	SetActiveFile(name string)
	Finalize() error
}

// plural returns n followed by word, pluralized with a trailing "s".
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

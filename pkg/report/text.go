package report

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Text writes a plain-text report to a file owned for the whole run.
type Text struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	logger *zap.Logger

	active         string
	activeReported bool
	problems       int
	problemFiles   int
	finalized      bool
}

// NewText creates (or truncates) the report file at path.
func NewText(path string, logger *zap.Logger) (*Text, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := createOutput(path, logger)
	if err != nil {
		return nil, err
	}
	return &Text{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		logger: logger,
	}, nil
}

// SetActiveFile switches the file following diagnostics belong to.
func (t *Text) SetActiveFile(name string) {
	t.active = name
	t.activeReported = false
}

// Receive appends one diagnostic line. Write errors are sticky in the
// buffered writer and surface from Finalize.
func (t *Text) Receive(d Diagnostic) {
	if !t.activeReported {
		t.activeReported = true
		t.problemFiles++
	}
	t.problems++
	_, _ = t.writer.WriteString(d.Format(t.active) + "\n")
}

// Finalize writes the summary line, flushes and closes the file.
func (t *Text) Finalize() error {
	if t.finalized {
		return nil
	}
	t.finalized = true

	_, _ = fmt.Fprintf(t.writer, "\n%s in %s\n", plural(t.problems, "problem"), plural(t.problemFiles, "file"))
	flushErr := t.writer.Flush()
	closeErr := t.file.Close()
	if flushErr != nil {
		t.logger.Error("Failed to flush text report", zap.String("file", t.path), zap.Error(flushErr))
		return fmt.Errorf("failed to flush text report %s: %w", t.path, flushErr)
	}
	if closeErr != nil {
		t.logger.Error("Failed to close text report", zap.String("file", t.path), zap.Error(closeErr))
		return fmt.Errorf("failed to close text report %s: %w", t.path, closeErr)
	}
	t.logger.Debug("Wrote text report", zap.String("file", t.path), zap.Int("problems", t.problems))
	return nil
}

package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrSinkOpen indicates that a report sink could not open its output.
var ErrSinkOpen = errors.New("cannot open report output")

// Chain is the ordered set of sinks for one run.
type Chain struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewChain builds a chain from already opened sinks.
func NewChain(logger *zap.Logger, sinks ...Sink) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{sinks: sinks, logger: logger}
}

// Open builds the chain for a run: the console sink on stdout first, then a
// file sink when outputPath is set. An ".html" or ".htm" suffix selects the
// HTML report, anything else the plain-text report.
func Open(outputPath string, stdout io.Writer, logger *zap.Logger) (*Chain, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sinks := []Sink{NewConsole(stdout)}
	if outputPath != "" {
		var (
			sink Sink
			err  error
		)
		if IsHTMLPath(outputPath) {
			sink, err = NewHTML(outputPath, logger)
		} else {
			sink, err = NewText(outputPath, logger)
		}
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	logger.Debug("Opened report sinks", zap.Int("sinkCount", len(sinks)), zap.String("output", outputPath))
	return NewChain(logger, sinks...), nil
}

// IsHTMLPath reports whether path selects the HTML report.
func IsHTMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// Len returns the number of sinks in the chain.
func (c *Chain) Len() int {
	return len(c.sinks)
}

// SetActiveFile tells every sink, in order, which file is being processed.
func (c *Chain) SetActiveFile(name string) {
	for _, s := range c.sinks {
		s.SetActiveFile(name)
	}
}

// Receive forwards d to every sink in chain order.
func (c *Chain) Receive(d Diagnostic) {
	for _, s := range c.sinks {
		s.Receive(d)
	}
}

// Finalize finalizes every sink once, in order, even when earlier sinks fail.
func (c *Chain) Finalize() error {
	var err error
	for _, s := range c.sinks {
		err = multierr.Append(err, s.Finalize())
	}
	if err != nil {
		c.logger.Error("Failed to finalize report sinks", zap.Error(err))
	}
	return err
}

// createOutput ensures the parent directory of path exists and creates the file.
func createOutput(path string, logger *zap.Logger) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create report directory", zap.String("path", dir), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrSinkOpen, path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to create report file", zap.String("file", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrSinkOpen, path, err)
	}
	logger.Debug("Created report file", zap.String("file", path))
	return f, nil
}

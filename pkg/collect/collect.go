// File: pkg/collect/collect.go
package collect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"hintrun/pkg/ignore"
)

// SourceSuffix is the suffix directory expansion filters on.
const SourceSuffix = ".js"

// ErrInvalidInput indicates an explicit input that is missing or unreadable.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the explicit input path that failed validation.
type InputError struct {
	Path   string // Absolute path of the input.
	Reason string // "No such file" or "Cannot read file".
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return e.Reason + ": " + e.Path
}

// Is makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// File is one source file selected for checking.
type File struct {
	Path string // Absolute path.
	Name string // Base name, used for blacklist matching and reporting.
}

// FileSet is the ordered, deduplicated list of files for a run.
type FileSet []File

// Paths returns the absolute paths of the set, in order.
func (fs FileSet) Paths() []string {
	paths := make([]string, len(fs))
	for i, f := range fs {
		paths[i] = f.Path
	}
	return paths
}

// Options controls collection.
type Options struct {
	Suffix  string          // Suffix for directory expansion; SourceSuffix when empty.
	Exclude *ignore.Matcher // Optional exclude patterns for directory expansion.
	BaseDir string          // Directory exclude patterns are relative to; paths outside it are never excluded. The working directory when empty.
	Logger  *zap.Logger
}

type collector struct {
	opts    Options
	logger  *zap.Logger
	visited map[string]bool
	seen    map[string]bool
	files   FileSet
}

// Collect expands the input paths into a FileSet. Directories are descended
// recursively and filtered on the source suffix; explicit files are added
// regardless of suffix but must be regular, readable files.
func Collect(paths []string, opts Options) (FileSet, error) {
	if opts.Suffix == "" {
		opts.Suffix = SourceSuffix
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.BaseDir = wd
		}
	}

	c := &collector{
		opts:    opts,
		logger:  opts.Logger,
		visited: make(map[string]bool),
		seen:    make(map[string]bool),
	}
	c.logger.Debug("Starting file collection", zap.Int("pathCount", len(paths)))

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &InputError{Path: path, Reason: "No such file"}
		}

		info, err := os.Stat(absPath)
		if err == nil && info.IsDir() {
			c.logger.Debug("Expanding directory", zap.String("dir", absPath))
			c.expand(absPath)
			continue
		}
		if err != nil || !info.Mode().IsRegular() {
			return nil, &InputError{Path: absPath, Reason: "No such file"}
		}
		if !readable(absPath) {
			return nil, &InputError{Path: absPath, Reason: "Cannot read file"}
		}
		c.add(absPath)
	}

	c.logger.Debug("Completed file collection", zap.Int("fileCount", len(c.files)))
	return c.files, nil
}

// expand walks dir recursively. Symlinked directories are followed once per
// real path, which also stops symlink cycles. Entries that cannot be
// inspected are skipped.
func (c *collector) expand(dir string) {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		c.logger.Warn("Cannot resolve directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	if c.visited[realDir] {
		c.logger.Debug("Skipping already visited directory", zap.String("dir", dir), zap.String("realDir", realDir))
		return
	}
	c.visited[realDir] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		c.logger.Warn("Cannot read directory", zap.String("dir", dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			c.logger.Debug("Skipping inaccessible entry", zap.String("path", path), zap.Error(err))
			continue
		}

		if info.IsDir() {
			if c.excluded(path, true) {
				c.logger.Debug("Skipping excluded directory", zap.String("dir", path))
				continue
			}
			c.expand(path)
			continue
		}

		if !info.Mode().IsRegular() || !strings.HasSuffix(entry.Name(), c.opts.Suffix) {
			continue
		}
		if c.excluded(path, false) {
			c.logger.Debug("Skipping excluded file", zap.String("file", path))
			continue
		}
		if !readable(path) {
			c.logger.Debug("Skipping unreadable file", zap.String("file", path))
			continue
		}
		c.add(path)
	}
}

func (c *collector) add(path string) {
	if c.seen[path] {
		c.logger.Debug("Skipping duplicate input", zap.String("file", path))
		return
	}
	c.seen[path] = true
	c.files = append(c.files, File{Path: path, Name: filepath.Base(path)})
}

func (c *collector) excluded(path string, isDir bool) bool {
	if c.opts.Exclude == nil {
		return false
	}
	rel := path
	if c.opts.BaseDir != "" {
		r, err := filepath.Rel(c.opts.BaseDir, path)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return false
		}
		rel = r
	}
	return c.opts.Exclude.Matches(rel, isDir)
}

// readable reports whether path can be opened for reading.
func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

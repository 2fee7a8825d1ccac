// Package ignore matches paths against gitignore-style exclude patterns, as
// read from a JSHint exclude file (--exclude-path).
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Pattern is one compiled exclude pattern.
type Pattern struct {
	Regexp *regexp.Regexp // Compiled expression matched against slash-separated paths.
	Negate bool           // Pattern started with '!' and re-includes matches.
	Line   string         // Original pattern line.
	LineNo int            // Line number in the source (1-based).
}

// Matcher is an ordered list of patterns; the last matching pattern wins.
type Matcher struct {
	patterns []*Pattern
	logger   *zap.Logger
}

// New returns an empty matcher.
func New(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{logger: logger}
}

// Load reads an exclude file and compiles its lines.
func Load(path string, logger *zap.Logger) (*Matcher, error) {
	m := New(logger)
	content, err := os.ReadFile(path)
	if err != nil {
		m.logger.Error("Failed to read exclude file", zap.String("filePath", path), zap.Error(err))
		return nil, fmt.Errorf("reading exclude file: %w", err)
	}
	m.CompileLines(strings.Split(string(content), "\n")...)
	m.logger.Debug("Compiled exclude patterns", zap.String("filePath", path), zap.Int("patternCount", len(m.patterns)))
	return m, nil
}

// CompileLines compiles pattern lines, skipping blanks and comments.
func (m *Matcher) CompileLines(lines ...string) {
	for i, line := range lines {
		re, negate := parsePatternLine(line)
		if re == nil {
			continue
		}
		m.patterns = append(m.patterns, &Pattern{
			Regexp: re,
			Negate: negate,
			Line:   line,
			LineNo: i + 1,
		})
	}
}

// Len returns the number of compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// Matches reports whether the relative path is excluded. Directories are
// matched with a trailing slash so that "dir/" patterns apply to them.
func (m *Matcher) Matches(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	path := filepath.ToSlash(relPath)
	if isDir && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	matched := false
	for _, p := range m.patterns {
		if p.Regexp.MatchString(path) {
			matched = !p.Negate
			m.logger.Debug("Path matches exclude pattern",
				zap.String("path", path),
				zap.String("pattern", p.Line),
				zap.Bool("negate", p.Negate))
		}
	}
	return matched
}

// parsePatternLine turns one exclude line into an anchored expression and
// a negation flag. It returns nil for blank and comment lines.
func parsePatternLine(line string) (*regexp.Regexp, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, false
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = trimmed[1:]
	}
	if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
		trimmed = trimmed[1:]
	}

	rooted := strings.HasPrefix(trimmed, "/")
	body := globToRegex(strings.TrimPrefix(trimmed, "/"))

	if strings.HasSuffix(trimmed, "/") {
		body += ".*$"
	} else {
		body += "(/.*)?$"
	}
	if rooted {
		body = "^" + body
	} else {
		body = "^(.*/)?" + body
	}

	re, err := regexp.Compile(body)
	if err != nil {
		return nil, false
	}
	return re, negate
}

// globToRegex converts '*', '?' and '**' wildcards, quoting everything else.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					b.WriteString("(.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

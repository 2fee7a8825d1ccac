package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink remembers every call it receives, tagged with its name.
type recordingSink struct {
	name  string
	calls *[]string
	err   error
}

func (r *recordingSink) SetActiveFile(name string) {
	*r.calls = append(*r.calls, r.name+":file:"+name)
}

func (r *recordingSink) Receive(d Diagnostic) {
	*r.calls = append(*r.calls, r.name+":diag:"+d.Message)
}

func (r *recordingSink) Finalize() error {
	*r.calls = append(*r.calls, r.name+":finalize")
	return r.err
}

func TestSeverityFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Severity
	}{
		{"E001", SeverityError},
		{"W033", SeverityWarning},
		{"I003", SeverityInfo},
		{"", SeverityWarning},
		{"X999", SeverityWarning},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SeverityFromCode(tc.code), "code %q", tc.code)
	}
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestDiagnosticFormat(t *testing.T) {
	d := Diagnostic{Line: 3, Character: 7, Code: "W033", Message: "Missing semicolon."}
	assert.Equal(t, "a.js: line 3, col 7, Missing semicolon. (W033)", d.Format("a.js"))

	d.Code = ""
	assert.Equal(t, "a.js: line 3, col 7, Missing semicolon.", d.Format("a.js"))
}

func TestChain_FansOutInOrder(t *testing.T) {
	var calls []string
	first := &recordingSink{name: "console", calls: &calls}
	second := &recordingSink{name: "file", calls: &calls}
	c := NewChain(nil, first, second)

	c.SetActiveFile("a.js")
	c.Receive(Diagnostic{Message: "one"})
	c.Receive(Diagnostic{Message: "two"})
	require.NoError(t, c.Finalize())

	assert.Equal(t, []string{
		"console:file:a.js", "file:file:a.js",
		"console:diag:one", "file:diag:one",
		"console:diag:two", "file:diag:two",
		"console:finalize", "file:finalize",
	}, calls)
}

func TestChain_FinalizeContinuesAfterFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	c := NewChain(nil,
		&recordingSink{name: "a", calls: &calls, err: boom},
		&recordingSink{name: "b", calls: &calls},
	)

	err := c.Finalize()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a:finalize", "b:finalize"}, calls)
}

func TestOpen_ConsoleOnly(t *testing.T) {
	var out bytes.Buffer
	c, err := Open("", &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	c.SetActiveFile("a.js")
	c.Receive(Diagnostic{Line: 1, Character: 2, Code: "W033", Severity: SeverityWarning, Message: "Missing semicolon."})
	require.NoError(t, c.Finalize())

	assert.Equal(t, "a.js: line 1, col 2, Missing semicolon. (W033)\n", out.String())
}

func TestOpen_SelectsSinkBySuffix(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		output string
		html   bool
	}{
		{"html", "report.html", true},
		{"htm upper case", "REPORT.HTM", true},
		{"text", "report.txt", false},
		{"no extension", "report", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.output)
			c, err := Open(path, &bytes.Buffer{}, nil)
			require.NoError(t, err)
			require.Equal(t, 2, c.Len())

			_, isHTML := c.sinks[1].(*HTML)
			assert.Equal(t, tc.html, isHTML)
			require.NoError(t, c.Finalize())
		})
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "report.txt")
	c, err := Open(path, &bytes.Buffer{}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Finalize())
	assert.FileExists(t, path)
}

func TestOpen_FailureIsSinkOpenError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// A regular file cannot be used as a directory.
	_, err := Open(filepath.Join(blocker, "report.html"), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkOpen)
}

func TestText_ReportAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	s, err := NewText(path, nil)
	require.NoError(t, err)

	s.SetActiveFile("a.js")
	s.Receive(Diagnostic{Line: 1, Character: 5, Code: "W033", Message: "Missing semicolon."})
	s.Receive(Diagnostic{Line: 2, Character: 1, Code: "E019", Message: "Unmatched '{'."})
	s.SetActiveFile("clean.js")
	s.SetActiveFile("b.js")
	s.Receive(Diagnostic{Line: 9, Character: 3, Message: "Cannot read file."})
	require.NoError(t, s.Finalize())
	require.NoError(t, s.Finalize(), "second finalize must be a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"a.js: line 1, col 5, Missing semicolon. (W033)",
		"a.js: line 2, col 1, Unmatched '{'. (E019)",
		"b.js: line 9, col 3, Cannot read file.",
		"",
		"3 problems in 2 files",
		"",
	}, "\n"), string(data))
}

func TestHTML_SingleDocumentFramesAllFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	s, err := NewHTML(path, nil)
	require.NoError(t, err)

	s.SetActiveFile("a.js")
	s.Receive(Diagnostic{Line: 1, Character: 5, Code: "W033", Severity: SeverityWarning, Message: "Missing <semicolon>."})
	s.SetActiveFile("b.js")
	require.NoError(t, s.Finalize())
	require.NoError(t, s.Finalize())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>\n<html>"))
	assert.True(t, strings.HasSuffix(doc, "</body>\n</html>\n"))
	assert.Equal(t, 1, strings.Count(doc, "<html>"))
	assert.Equal(t, 1, strings.Count(doc, "</html>"))
	assert.Equal(t, 2, strings.Count(doc, "<section class=\"file\">"))
	assert.Equal(t, 2, strings.Count(doc, "</section>"))
	assert.Contains(t, doc, "<h2>a.js</h2>")
	assert.Contains(t, doc, "<tr class=\"warning\"><td>1</td><td>5</td><td>W033</td><td>Missing &lt;semicolon&gt;.</td></tr>")
	assert.Contains(t, doc, "<h2>b.js</h2>\n<p class=\"clean\">No problems found.</p>")
	assert.Contains(t, doc, "<p class=\"summary\">1 problem in 1 file</p>")
}

func TestHTML_EmptyRunIsStillWellFormed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.htm")
	s, err := NewHTML(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Finalize())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.NotContains(t, doc, "<section")
	assert.Contains(t, doc, "0 problems in 0 files")
}

func TestHTML_ReceiveWithoutActiveFileClosesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	s, err := NewHTML(path, nil)
	require.NoError(t, err)

	s.Receive(Diagnostic{Line: 1, Character: 1, Code: "E001", Severity: SeverityError, Message: "Orphan."})
	s.SetActiveFile("a.js")
	s.Receive(Diagnostic{Line: 2, Character: 1, Code: "W033", Severity: SeverityWarning, Message: "Missing semicolon."})
	require.NoError(t, s.Finalize())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Equal(t, 2, strings.Count(doc, "<table>"))
	assert.Equal(t, 2, strings.Count(doc, "</table>"))
	assert.Equal(t, 1, strings.Count(doc, "</section>"))
	assert.Less(t, strings.Index(doc, "</table>"), strings.Index(doc, "<section"))
}

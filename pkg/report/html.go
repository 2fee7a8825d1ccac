package report

import (
	"bufio"
	"fmt"
	"html/template"
	"io"
	"os"

	"go.uber.org/zap"
)

// reportTitle heads the HTML document.
const reportTitle = "JSHint Report"

var htmlTemplates = template.Must(template.New("report").Parse(`
{{define "header"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 2px 8px; text-align: left; }
tr.error td { color: #b00020; }
tr.warning td { color: #a05a00; }
tr.info td { color: #0060a0; }
p.clean { color: #2e7d32; }
</style>
</head>
<body>
<h1>{{.}}</h1>
{{end}}
{{define "section"}}<section class="file">
<h2>{{.}}</h2>
{{end}}
{{define "table"}}<table>
<tr><th>Line</th><th>Col</th><th>Code</th><th>Message</th></tr>
{{end}}
{{define "row"}}<tr class="{{.Severity}}"><td>{{.Line}}</td><td>{{.Character}}</td><td>{{.Code}}</td><td>{{.Message}}</td></tr>
{{end}}
{{define "footer"}}<p class="summary">{{.}}</p>
</body>
</html>
{{end}}`))

type htmlRow struct {
	Severity  string
	Line      int
	Character int
	Code      string
	Message   string
}

// HTML writes a single HTML document covering every file of the run.
// The document head is written when the sink is opened and the closing
// tags when it is finalized, never per file.
type HTML struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	logger *zap.Logger
	err    error

	sectionOpen  bool
	tableOpen    bool
	problems     int
	problemFiles int
	finalized    bool
}

// NewHTML creates (or truncates) the report file at path and writes the
// document head.
func NewHTML(path string, logger *zap.Logger) (*HTML, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := createOutput(path, logger)
	if err != nil {
		return nil, err
	}
	h := &HTML{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		logger: logger,
	}
	h.execute(h.writer, "header", reportTitle)
	return h, nil
}

// SetActiveFile closes the previous file's section and opens a new one.
func (h *HTML) SetActiveFile(name string) {
	h.closeSection()
	h.execute(h.writer, "section", name)
	h.sectionOpen = true
}

// Receive adds a table row to the active section.
func (h *HTML) Receive(d Diagnostic) {
	if !h.tableOpen {
		h.execute(h.writer, "table", nil)
		h.tableOpen = true
		h.problemFiles++
	}
	h.problems++
	h.execute(h.writer, "row", htmlRow{
		Severity:  d.Severity.String(),
		Line:      d.Line,
		Character: d.Character,
		Code:      d.Code,
		Message:   d.Message,
	})
}

// Finalize closes the open section, writes the summary and the closing tags,
// then flushes and closes the file.
func (h *HTML) Finalize() error {
	if h.finalized {
		return nil
	}
	h.finalized = true

	h.closeSection()
	h.execute(h.writer, "footer", fmt.Sprintf("%s in %s", plural(h.problems, "problem"), plural(h.problemFiles, "file")))

	flushErr := h.writer.Flush()
	closeErr := h.file.Close()
	switch {
	case h.err != nil:
		h.logger.Error("Failed to render HTML report", zap.String("file", h.path), zap.Error(h.err))
		return fmt.Errorf("failed to render HTML report %s: %w", h.path, h.err)
	case flushErr != nil:
		h.logger.Error("Failed to flush HTML report", zap.String("file", h.path), zap.Error(flushErr))
		return fmt.Errorf("failed to flush HTML report %s: %w", h.path, flushErr)
	case closeErr != nil:
		h.logger.Error("Failed to close HTML report", zap.String("file", h.path), zap.Error(closeErr))
		return fmt.Errorf("failed to close HTML report %s: %w", h.path, closeErr)
	}
	h.logger.Debug("Wrote HTML report", zap.String("file", h.path), zap.Int("problems", h.problems))
	return nil
}

func (h *HTML) closeSection() {
	if h.tableOpen {
		_, _ = io.WriteString(h.writer, "</table>\n")
	}
	if h.sectionOpen {
		if !h.tableOpen {
			_, _ = io.WriteString(h.writer, "<p class=\"clean\">No problems found.</p>\n")
		}
		_, _ = io.WriteString(h.writer, "</section>\n")
	}
	h.sectionOpen = false
	h.tableOpen = false
}

// execute renders a named fragment, keeping the first error.
func (h *HTML) execute(w io.Writer, name string, data any) {
	if err := htmlTemplates.ExecuteTemplate(w, name, data); err != nil && h.err == nil {
		h.err = err
	}
}

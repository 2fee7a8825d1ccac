package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console prints each diagnostic as one line on the given writer.
// It keeps no state between files other than the active filename.
// Colors are only emitted when the writer is a terminal.
type Console struct {
	out    io.Writer
	file   string
	styles map[Severity]lipgloss.Style
}

// NewConsole creates a console sink writing to out.
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out: out,
		styles: map[Severity]lipgloss.Style{
			SeverityError:   r.NewStyle().Foreground(lipgloss.Color("196")),
			SeverityWarning: r.NewStyle().Foreground(lipgloss.Color("214")),
			SeverityInfo:    r.NewStyle().Foreground(lipgloss.Color("39")),
		},
	}
}

// SetActiveFile records the name used to prefix following diagnostics.
func (c *Console) SetActiveFile(name string) {
	c.file = name
}

// Receive prints the diagnostic immediately.
func (c *Console) Receive(d Diagnostic) {
	line := d.Format(c.file)
	if style, ok := c.styles[d.Severity]; ok {
		line = style.Render(line)
	}
	fmt.Fprintln(c.out, line)
}

// Finalize is a no-op; the console is not owned by the sink.
func (c *Console) Finalize() error {
	return nil
}

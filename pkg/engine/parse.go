package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hintrun/pkg/report"
)

var (
	// unixLinePattern matches "<file>:<line>:<char>: <reason>" as written by
	// JSHint's unix reporter.
	unixLinePattern = regexp.MustCompile(`^(.+?):(\d+):(\d+): (.*)$`)

	// codeSuffixPattern matches the " (W033)" suffix added in verbose mode.
	codeSuffixPattern = regexp.MustCompile(`^(.*) \(([EWI]\d{3})\)$`)
)

// parseUnixOutput turns unix-reporter output into diagnostics, keeping the
// engine's order. Lines that are not diagnostics (the trailing
// "N errors" summary, blank lines) are ignored. An error is returned when
// the output cannot be scanned to the end, e.g. a line over 1 MiB.
func parseUnixOutput(output []byte) ([]report.Diagnostic, error) {
	var diags []report.Diagnostic

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		m := unixLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		char, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}

		d := report.Diagnostic{
			Line:      lineNo,
			Character: char,
			Message:   m[4],
		}
		if cm := codeSuffixPattern.FindStringSubmatch(d.Message); cm != nil {
			d.Message = cm[1]
			d.Code = cm[2]
		}
		d.Severity = report.SeverityFromCode(d.Code)
		diags = append(diags, d)
	}
	if err := scanner.Err(); err != nil {
		return diags, fmt.Errorf("reading engine output: %w", err)
	}
	return diags, nil
}

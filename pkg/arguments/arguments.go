// Package arguments turns the command-line tokens of a run into a RunConfig.
//
// Parsing is a small state machine over an ordered flag table. A value flag
// always consumes the token that follows it, whatever that token looks like,
// so "--output --config" sets the output path to "--config". Every token
// that is neither a flag nor a flag's value is an input path.
package arguments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingValue indicates a value flag was the last token.
	ErrMissingValue = errors.New("missing value for option")

	// ErrHelp indicates --help or -h was given.
	ErrHelp = errors.New("help requested")
)

// RunConfig is the parsed form of one invocation.
type RunConfig struct {
	InputPaths   []string // Files and directories, in command-line order.
	Charset      string   // Input charset name; empty selects the default.
	CustomEngine string   // Alternate engine executable.
	ConfigFile   string   // Configuration file with blacklist and engine options.
	OutputFile   string   // Secondary report file.
	ExcludeFile  string   // Exclude-pattern file applied during directory expansion.
	MetricsFile  string   // Prometheus text-format metrics written at the end of the run.
	Verbose      bool     // Debug logging.
	Help         bool     // Usage requested.
}

type flagSpec struct {
	names       []string
	placeholder string // Empty for switches.
	set         func(c *RunConfig, value string)
}

var flagTable = []flagSpec{
	{names: []string{"--charset"}, placeholder: "<charset-name>", set: func(c *RunConfig, v string) { c.Charset = v }},
	{names: []string{"--custom"}, placeholder: "<custom-jshint-executable>", set: func(c *RunConfig, v string) { c.CustomEngine = v }},
	{names: []string{"--config"}, placeholder: "<config-file>", set: func(c *RunConfig, v string) { c.ConfigFile = v }},
	{names: []string{"--output"}, placeholder: "<output-report-file>", set: func(c *RunConfig, v string) { c.OutputFile = v }},
	{names: []string{"--exclude-path"}, placeholder: "<exclude-file>", set: func(c *RunConfig, v string) { c.ExcludeFile = v }},
	{names: []string{"--metrics"}, placeholder: "<metrics-file>", set: func(c *RunConfig, v string) { c.MetricsFile = v }},
	{names: []string{"--verbose"}, set: func(c *RunConfig, _ string) { c.Verbose = true }},
	{names: []string{"--help", "-h"}, set: func(c *RunConfig, _ string) { c.Help = true }},
}

func lookup(token string) *flagSpec {
	for i := range flagTable {
		for _, n := range flagTable[i].names {
			if n == token {
				return &flagTable[i]
			}
		}
	}
	return nil
}

type parseState int

const (
	stateToken parseState = iota // Expecting a flag or an input path.
	stateValue                   // Expecting the value of pending.
)

// Parse builds a RunConfig from tokens. It returns ErrHelp, together with
// the config parsed so far, as soon as a help flag is seen.
func Parse(tokens []string) (*RunConfig, error) {
	cfg := &RunConfig{}
	state := stateToken
	var pending *flagSpec
	var pendingName string

	for _, tok := range tokens {
		switch state {
		case stateValue:
			pending.set(cfg, tok)
			pending = nil
			state = stateToken

		case stateToken:
			spec := lookup(tok)
			switch {
			case spec == nil:
				cfg.InputPaths = append(cfg.InputPaths, tok)
			case spec.placeholder != "":
				pending, pendingName = spec, tok
				state = stateValue
			default:
				spec.set(cfg, "")
				if cfg.Help {
					return cfg, ErrHelp
				}
			}
		}
	}

	if state == stateValue {
		return nil, fmt.Errorf("%w: %s", ErrMissingValue, pendingName)
	}
	return cfg, nil
}

// Usage returns the fixed usage block printed after fatal errors and for --help.
func Usage(program string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [ <options> ] <input> [ <input> ... ]\n", program)
	for i, spec := range flagTable {
		prefix := "         "
		if i == 0 {
			prefix = "Options: "
		}
		line := strings.Join(spec.names, ", ")
		if spec.placeholder != "" {
			line += " " + spec.placeholder
		}
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

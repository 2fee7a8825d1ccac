package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"hintrun/pkg/report"
)

// DefaultCommand is the engine executable looked up on PATH when no custom
// engine is given.
const DefaultCommand = "jshint"

// Process runs a JSHint-compatible executable once per checked file.
//
// The executable must accept "--reporter=unix --verbose [--config <file>] -",
// read the source from stdin and print unix-reporter lines on stdout. It
// must also answer "--version", which Load runs to verify it.
type Process struct {
	defaultCommand string
	command        string
	version        string
	configPath     string
	logger         *zap.Logger
}

// Option configures a Process.
type Option func(*Process)

// WithDefaultCommand overrides the executable used when Load gets no
// custom engine.
func WithDefaultCommand(name string) Option {
	return func(p *Process) {
		p.defaultCommand = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

// NewProcess creates an unloaded process engine.
func NewProcess(opts ...Option) *Process {
	p := &Process{
		defaultCommand: DefaultCommand,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Command returns the resolved engine executable, empty before Load.
func (p *Process) Command() string {
	return p.command
}

// Version returns what the engine printed for "--version".
func (p *Process) Version() string {
	return p.version
}

// Load resolves the engine executable and checks that it answers "--version".
func (p *Process) Load(ctx context.Context, custom string) error {
	command, err := p.resolve(custom)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}

	var stdout, stderr bytes.Buffer
	versionCmd := exec.CommandContext(ctx, command, "--version")
	versionCmd.Stdout = &stdout
	versionCmd.Stderr = &stderr
	if err := versionCmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailure,
			&EngineError{Command: command, Err: err, Output: strings.TrimSpace(stderr.String())})
	}

	p.command = command
	p.version = strings.TrimSpace(stdout.String() + stderr.String())
	p.logger.Debug("Loaded lint engine",
		zap.String("command", command),
		zap.String("version", p.version),
		zap.Bool("custom", custom != ""))
	return nil
}

// resolve finds the executable for custom, or the default command on PATH.
func (p *Process) resolve(custom string) (string, error) {
	if custom == "" {
		path, err := exec.LookPath(p.defaultCommand)
		if err != nil {
			return "", err
		}
		return path, nil
	}

	abs, err := filepath.Abs(custom)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", abs)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not executable", abs)
	}
	return abs, nil
}

// Configure writes opts to a private JSON file passed to every check.
// Empty options leave the engine on its own defaults.
func (p *Process) Configure(opts Options) error {
	if p.command == "" {
		return ErrNotLoaded
	}
	if err := p.removeConfig(); err != nil {
		return err
	}
	if len(opts) == 0 {
		p.logger.Debug("No engine options to apply")
		return nil
	}

	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding engine options: %w", err)
	}
	f, err := os.CreateTemp("", "hintrun-*.json")
	if err != nil {
		return fmt.Errorf("creating engine config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("writing engine config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("writing engine config: %w", err)
	}

	p.configPath = f.Name()
	p.logger.Debug("Applied engine options", zap.String("configFile", p.configPath), zap.Int("optionCount", len(opts)))
	return nil
}

// Check runs the engine on source and pushes its diagnostics to r.
func (p *Process) Check(ctx context.Context, source string, r report.Receiver) error {
	if p.command == "" {
		return ErrNotLoaded
	}
	ctx, span := startCheckSpan(ctx, p.command, len(source))
	defer span.End()
	start := time.Now()

	args := []string{"--reporter=unix", "--verbose"}
	if p.configPath != "" {
		args = append(args, "--config", p.configPath)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = strings.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// JSHint exits non-zero when it finds problems; an exit error without
	// any parsed diagnostic is a failure.
	diags, parseErr := parseUnixOutput(stdout.Bytes())
	switch {
	case parseErr != nil:
		err = parseErr
	case err != nil && len(diags) > 0:
		err = nil
	}
	if err != nil {
		recordCheckMetrics(ctx, time.Since(start), 0, false)
		span.SetStatus(codes.Error, err.Error())
		return &EngineError{
			Command: p.command,
			Err:     fmt.Errorf("%w: %w", ErrCheckFailed, err),
			Output:  strings.TrimSpace(stderr.String()),
		}
	}

	for _, d := range diags {
		r.Receive(d)
	}

	span.SetAttributes(attribute.Int("engine.diagnostics", len(diags)))
	recordCheckMetrics(ctx, time.Since(start), len(diags), true)
	p.logger.Debug("Engine check completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("diagnostics", len(diags)))
	return nil
}

// Close removes the private config file.
func (p *Process) Close() error {
	return p.removeConfig()
}

func (p *Process) removeConfig() error {
	if p.configPath == "" {
		return nil
	}
	path := p.configPath
	p.configPath = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing engine config: %w", err)
	}
	return nil
}

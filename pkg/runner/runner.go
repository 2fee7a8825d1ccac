// Package runner drives one lint run from command-line tokens to finalized
// reports.
//
// A run is a fixed sequence of states:
//
//	ParseArgs -> EnsureCharset -> EnsureInputFiles -> LoadEngine ->
//	ConfigureEngine -> ProcessFiles -> Done
//
// A failure before any file is processed ends the run in Failed, which
// prints the error, a blank line and the usage block to stderr. Once files
// are being processed each file is its own recoverable boundary, and the
// report sinks are finalized on every path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"hintrun/pkg/arguments"
	"hintrun/pkg/charset"
	"hintrun/pkg/collect"
	"hintrun/pkg/config"
	"hintrun/pkg/engine"
	"hintrun/pkg/ignore"
	"hintrun/pkg/report"
	"hintrun/pkg/telemetry"
	"hintrun/pkg/version"
)

// EngineFactory creates the engine for one run.
type EngineFactory func(logger *zap.Logger) engine.Engine

// Result summarizes a completed run.
type Result struct {
	FilesChecked int // Files passed to the engine successfully.
	FilesSkipped int // Blacklisted files.
	Diagnostics  int // Diagnostics reported by the engine.
	FileFailures int // Files that could not be read or checked.
}

// Runner executes runs. A Runner is not safe for concurrent use.
type Runner struct {
	stdout    io.Writer
	stderr    io.Writer
	logger    *zap.Logger
	newEngine EngineFactory
	program   string
	onVerbose func(bool)
	traceEnv  func() string

	state State
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets the writer for the console report and --help output.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// WithStderr sets the writer for fatal error messages and usage.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) { r.stderr = w }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithEngineFactory replaces the default external-process engine.
func WithEngineFactory(f EngineFactory) Option {
	return func(r *Runner) { r.newEngine = f }
}

// WithProgramName sets the program name shown in the usage block.
func WithProgramName(name string) Option {
	return func(r *Runner) { r.program = name }
}

// WithVerboseHook registers a callback invoked when --verbose is given.
func WithVerboseHook(fn func(bool)) Option {
	return func(r *Runner) { r.onVerbose = fn }
}

// New creates a Runner. Defaults: os.Stdout, os.Stderr, a no-op logger and
// the JSHint process engine.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   zap.NewNop(),
		program:  version.AppName,
		traceEnv: func() string { return os.Getenv(telemetry.TraceEnv) },
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newEngine == nil {
		r.newEngine = func(logger *zap.Logger) engine.Engine {
			return engine.NewProcess(engine.WithLogger(logger))
		}
	}
	return r
}

// State returns the state the last run reached.
func (r *Runner) State() State {
	return r.state
}

// Run executes one run for the given command-line tokens. Fatal errors are
// returned as *StateError after the message and usage have been printed.
func (r *Runner) Run(ctx context.Context, tokens []string) (res Result, err error) {
	start := time.Now()
	logger := r.logger.With(zap.String("runID", uuid.NewString()))

	r.state = StateParseArgs
	cfg, err := arguments.Parse(tokens)
	if errors.Is(err, arguments.ErrHelp) {
		fmt.Fprint(r.stdout, arguments.Usage(r.program))
		r.state = StateDone
		return Result{}, nil
	}
	if err != nil {
		return r.fail(logger, StateParseArgs, err)
	}
	if cfg.Verbose && r.onVerbose != nil {
		r.onVerbose(true)
	}

	shutdown := r.startTelemetry(ctx, cfg, logger)
	defer func() {
		if serr := shutdown(ctx); serr != nil {
			logger.Error("Failed to shut down telemetry", zap.Error(serr))
			if err == nil {
				err = fmt.Errorf("%w: %w", ErrFinalize, serr)
			}
		}
	}()

	ctx, span := tracer.Start(ctx, "Runner.Run",
		trace.WithAttributes(attribute.Int("run.input_paths", len(cfg.InputPaths))))
	defer func() {
		span.SetAttributes(
			attribute.Int("run.files_checked", res.FilesChecked),
			attribute.Int("run.diagnostics", res.Diagnostics),
			attribute.String("run.state", string(r.state)),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger.Debug("Parsed arguments",
		zap.Strings("inputs", cfg.InputPaths),
		zap.String("charset", cfg.Charset),
		zap.String("custom", cfg.CustomEngine),
		zap.String("config", cfg.ConfigFile),
		zap.String("output", cfg.OutputFile))

	exclude, excludeBase := r.loadExclude(cfg.ExcludeFile, logger)
	files, err := collect.Collect(cfg.InputPaths, collect.Options{
		Exclude: exclude,
		BaseDir: excludeBase,
		Logger:  logger,
	})
	if err != nil {
		return r.fail(logger, StateParseArgs, err)
	}

	r.state = StateEnsureCharset
	cs, err := charset.Lookup(cfg.Charset)
	if err != nil {
		return r.fail(logger, StateEnsureCharset, err)
	}

	r.state = StateEnsureInput
	if len(files) == 0 {
		return r.fail(logger, StateEnsureInput, ErrNoInputFiles)
	}

	r.state = StateLoadEngine
	eng := r.newEngine(logger)
	if err := eng.Load(ctx, cfg.CustomEngine); err != nil {
		return r.fail(logger, StateLoadEngine, err)
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			logger.Warn("Failed to close engine", zap.Error(cerr))
		}
	}()

	r.state = StateConfigureEngine
	settings, cerr := config.Load(cfg.ConfigFile, logger)
	if cerr != nil {
		logger.Warn("Continuing without configuration", zap.String("filePath", cfg.ConfigFile), zap.Error(cerr))
		settings = config.Empty()
	}
	if err := eng.Configure(settings.Engine); err != nil {
		return r.fail(logger, StateConfigureEngine, err)
	}

	r.state = StateProcessFiles
	chain, err := report.Open(cfg.OutputFile, r.stdout, logger)
	if err != nil {
		return r.fail(logger, StateProcessFiles, err)
	}
	defer func() {
		if ferr := chain.Finalize(); ferr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrFinalize, ferr)
		}
		if err == nil {
			r.state = StateDone
		}
		logger.Info("Run completed",
			zap.Int("filesChecked", res.FilesChecked),
			zap.Int("filesSkipped", res.FilesSkipped),
			zap.Int("diagnostics", res.Diagnostics),
			zap.Int("fileFailures", res.FileFailures),
			zap.Duration("elapsed", time.Since(start)))
	}()

	res = r.processFiles(ctx, files, cs, settings.Blacklist, eng, chain, logger)
	return res, nil
}

// processFiles checks every non-blacklisted file. A file that cannot be read
// or checked is reported to the sinks as an error diagnostic and the loop
// moves on.
func (r *Runner) processFiles(
	ctx context.Context,
	files collect.FileSet,
	cs *charset.Charset,
	blacklist config.Blacklist,
	eng engine.Engine,
	chain *report.Chain,
	logger *zap.Logger,
) Result {
	var res Result
	for _, f := range files {
		if blacklist.Contains(f.Name) {
			logger.Debug("Skipping blacklisted file", zap.String("file", f.Path))
			res.FilesSkipped++
			recordFile(ctx, "skipped")
			continue
		}

		chain.SetActiveFile(f.Name)
		counter := &countingReceiver{next: chain}
		if err := checkFile(ctx, eng, cs, f, counter); err != nil {
			logger.Error("Failed to check file", zap.String("file", f.Path), zap.Error(err))
			chain.Receive(report.Diagnostic{Severity: report.SeverityError, Message: err.Error()})
			res.FileFailures++
			res.Diagnostics += counter.n
			recordFile(ctx, "failed")
			continue
		}

		logger.Debug("Checked file", zap.String("file", f.Path), zap.Int("diagnostics", counter.n))
		res.FilesChecked++
		res.Diagnostics += counter.n
		recordFile(ctx, "checked")
	}
	return res
}

// checkFile reads, decodes and checks one file. Panics from the engine are
// turned into errors so they stay within the file.
func checkFile(ctx context.Context, eng engine.Engine, cs *charset.Charset, f collect.File, rcv report.Receiver) (err error) {
	source, err := readSource(f.Path, cs)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: engine panic: %v", engine.ErrCheckFailed, p)
		}
	}()
	return eng.Check(ctx, source, rcv)
}

// readSource reads path and decodes it with cs. The file is closed on every path.
func readSource(path string, cs *charset.Charset) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}
	text, err := cs.Decode(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}
	return text, nil
}

// loadExclude loads the exclude file and returns it with the directory its
// patterns are relative to. A missing or unreadable file only disables
// exclusion.
func (r *Runner) loadExclude(path string, logger *zap.Logger) (*ignore.Matcher, string) {
	if path == "" {
		return nil, ""
	}
	m, err := ignore.Load(path, logger)
	if err != nil {
		logger.Warn("Continuing without exclude patterns", zap.String("filePath", path), zap.Error(err))
		return nil, ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		logger.Warn("Continuing without exclude patterns", zap.String("filePath", path), zap.Error(err))
		return nil, ""
	}
	return m, filepath.Dir(abs)
}

func (r *Runner) startTelemetry(ctx context.Context, cfg *arguments.RunConfig, logger *zap.Logger) telemetry.ShutdownFunc {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    version.AppName,
		ServiceVersion: version.Version,
		MetricsFile:    cfg.MetricsFile,
		TraceExporter:  r.traceEnv(),
	}, logger)
	if err != nil {
		logger.Warn("Telemetry disabled", zap.Error(err))
		return func(context.Context) error { return nil }
	}
	return shutdown
}

// fail moves the run to StateFailed and prints the message and usage.
func (r *Runner) fail(logger *zap.Logger, state State, err error) (Result, error) {
	r.state = StateFailed
	logger.Debug("Run failed", zap.String("state", string(state)), zap.Error(err))

	fmt.Fprintln(r.stderr, err.Error())
	fmt.Fprintln(r.stderr)
	fmt.Fprint(r.stderr, arguments.Usage(r.program))
	return Result{}, &StateError{State: state, Err: err}
}

// countingReceiver counts diagnostics on their way to the chain.
type countingReceiver struct {
	next report.Receiver
	n    int
}

func (c *countingReceiver) Receive(d report.Diagnostic) {
	c.n++
	c.next.Receive(d)
}

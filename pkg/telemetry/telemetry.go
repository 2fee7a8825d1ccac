// Package telemetry wires OpenTelemetry for a run.
//
// Metrics go through the OpenTelemetry Prometheus exporter into a private
// registry, which is written in the Prometheus text format to a file when
// the run shuts down. Spans can be printed to stderr for debugging.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TraceEnv selects the trace exporter; "stdout" is the only one supported.
const TraceEnv = "HINTRUN_TRACE"

// ErrUnknownExporter indicates an unsupported trace exporter name.
var ErrUnknownExporter = errors.New("unknown exporter")

// Config controls which providers Init installs.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// MetricsFile receives the Prometheus text exposition on shutdown.
	// Metrics are not collected when empty.
	MetricsFile string

	// TraceExporter is "stdout" or empty/"none".
	TraceExporter string

	// TraceWriter receives stdout spans; os.Stderr when nil.
	TraceWriter io.Writer
}

// ShutdownFunc flushes and releases the installed providers.
type ShutdownFunc func(context.Context) error

// Init installs the global meter and tracer providers requested by cfg.
func Init(ctx context.Context, cfg Config, logger *zap.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var shutdownFuncs []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = multierr.Append(err, fn(ctx))
		}
		return err
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	switch cfg.TraceExporter {
	case "", "none":
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
		logger.Debug("Installed stdout tracer")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	if cfg.MetricsFile != "" {
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("create prometheus exporter: %w", err), shutdown(ctx))
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		otel.SetMeterProvider(mp)

		path := cfg.MetricsFile
		// Write before shutting the provider down; the exporter stops
		// collecting afterwards.
		shutdownFuncs = append(shutdownFuncs, func(ctx context.Context) error {
			err := writeTextfile(path, registry)
			if err == nil {
				logger.Debug("Wrote metrics", zap.String("filePath", path))
			}
			return multierr.Append(err, mp.Shutdown(ctx))
		})
		logger.Debug("Installed prometheus meter", zap.String("filePath", path))
	}

	return shutdown, nil
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}
	return nil
}

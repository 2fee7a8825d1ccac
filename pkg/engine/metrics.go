package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for engine operations.
var (
	tracer = otel.Tracer("hintrun.engine")
	meter  = otel.Meter("hintrun.engine")
)

// Metrics for engine checks.
var (
	checkLatency     metric.Float64Histogram
	checkTotal       metric.Int64Counter
	diagnosticsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		checkLatency, err = meter.Float64Histogram(
			"hintrun_check_duration_seconds",
			metric.WithDescription("Duration of engine checks"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkTotal, err = meter.Int64Counter(
			"hintrun_checks_total",
			metric.WithDescription("Total number of engine checks"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"hintrun_diagnostics_total",
			metric.WithDescription("Total number of diagnostics reported by the engine"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startCheckSpan creates a span for one engine check.
func startCheckSpan(ctx context.Context, command string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Process.Check",
		trace.WithAttributes(
			attribute.String("engine.command", command),
			attribute.Int("engine.source_bytes", size),
		),
	)
}

// recordCheckMetrics records metrics for one engine check.
func recordCheckMetrics(ctx context.Context, duration time.Duration, diagnostics int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checkTotal.Add(ctx, 1, attrs)
	if success {
		diagnosticsTotal.Add(ctx, int64(diagnostics))
	}
}

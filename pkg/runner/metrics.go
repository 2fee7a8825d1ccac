package runner

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("hintrun.runner")
	meter  = otel.Meter("hintrun.runner")
)

var (
	filesTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		filesTotal, metricsErr = meter.Int64Counter(
			"hintrun_files_total",
			metric.WithDescription("Files handled by a run, by outcome"),
		)
	})
	return metricsErr
}

// recordFile counts one file with outcome "checked", "skipped" or "failed".
func recordFile(ctx context.Context, outcome string) {
	if err := initMetrics(); err != nil {
		return
	}
	filesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

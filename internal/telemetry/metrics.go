package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records catalog operations. It satisfies repos.MetricsRecorder.
type Metrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewMetrics registers the catalog instruments on meter. size, when non-nil,
// is polled on each collection for the number of stored records.
func NewMetrics(meter metric.Meter, size func() int) (*Metrics, error) {
	operations, err := meter.Int64Counter(
		"repos.operations.total",
		metric.WithDescription("Catalog operations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create repos.operations.total counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"repos.operation.duration",
		metric.WithDescription("Time spent in catalog operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create repos.operation.duration histogram: %w", err)
	}

	if size != nil {
		_, err = meter.Int64ObservableGauge(
			"repos.collection.size",
			metric.WithDescription("Number of records currently stored"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(size()))
				return nil
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create repos.collection.size gauge: %w", err)
		}
	}

	return &Metrics{
		operations: operations,
		duration:   duration,
	}, nil
}

// RecordOperation counts one operation and records its latency.
func (m *Metrics) RecordOperation(ctx context.Context, operation, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.operations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

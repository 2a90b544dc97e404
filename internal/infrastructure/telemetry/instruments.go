package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OperationMetrics records how often a named operation ran, how it ended and
// how long it took. The chat executor labels by command kind and the tool
// servers label by tool name.
type OperationMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOperationMetrics registers "<prefix>.calls" and "<prefix>.duration" on meter.
func NewOperationMetrics(meter metric.Meter, prefix string) (*OperationMetrics, error) {
	calls, err := meter.Int64Counter(prefix+".calls",
		metric.WithDescription("Number of operations executed"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(prefix+".duration",
		metric.WithDescription("Operation latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &OperationMetrics{calls: calls, duration: duration}, nil
}

// Record adds one observation. A nil receiver records nothing.
func (m *OperationMetrics) Record(ctx context.Context, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
}

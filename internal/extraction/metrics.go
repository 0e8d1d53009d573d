package extraction

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/agentinsights/internal/extraction"

// Metrics records extraction latency, failures and learning counts.
type Metrics struct {
	logger    *zap.Logger
	duration  metric.Float64Histogram
	failures  metric.Int64Counter
	learnings metric.Int64Counter
}

// NewMetrics creates Metrics backed by the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	return newMetrics(otel.Meter(instrumentationName), logger)
}

func newMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{logger: logger}

	var err error
	m.duration, err = meter.Float64Histogram(
		"cai.extraction.duration_seconds",
		metric.WithDescription("Duration of one extraction request, completion and parsing included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 20, 30, 60, 120),
	)
	if err != nil {
		logger.Warn("failed to create extraction duration histogram", zap.Error(err))
	}

	m.failures, err = meter.Int64Counter(
		"cai.extraction.failures_total",
		metric.WithDescription("Extractions whose completion request failed"),
		metric.WithUnit("{extraction}"),
	)
	if err != nil {
		logger.Warn("failed to create extraction failures counter", zap.Error(err))
	}

	m.learnings, err = meter.Int64Counter(
		"cai.extraction.learnings_total",
		metric.WithDescription("Learnings seen per stage: parsed (schema-valid) and kept (above the confidence threshold)"),
		metric.WithUnit("{learning}"),
	)
	if err != nil {
		logger.Warn("failed to create learnings counter", zap.Error(err))
	}
	return m
}

func (m *Metrics) recordFailure(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("failed", true)))
	}
	if m.failures != nil {
		m.failures.Add(ctx, 1)
	}
}

func (m *Metrics) recordSuccess(ctx context.Context, d time.Duration, parsed, kept int) {
	if m == nil {
		return
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("failed", false)))
	}
	if m.learnings != nil {
		m.learnings.Add(ctx, int64(parsed), metric.WithAttributes(attribute.String("stage", "parsed")))
		m.learnings.Add(ctx, int64(kept), metric.WithAttributes(attribute.String("stage", "kept")))
	}
}

package core

import (
	"context"
	"time"
)

// MetricsRecorder receives one observation per bank operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// observe records the outcome of an operation started at start.
func (b *Bank) observe(ctx context.Context, operation string, start time.Time, err error) {
	b.metrics.Observe(ctx, operation, err == nil, b.now().Sub(start))
}

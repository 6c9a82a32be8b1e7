package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DispatchMetrics defines the interface for recording action dispatch metrics.
// Implementations track dispatch counts and durations per action type and
// outcome for observability.
type DispatchMetrics interface {
	// RecordDispatch records a completed dispatch with its outcome.
	// ActionType examples: "system.ping", "credentials.create"
	// Outcome is "success" or the lowercased error code ("forbidden",
	// "validation_error"), matching the audit trail's outcome values.
	RecordDispatch(ctx context.Context, actionType, outcome string)

	// RecordDuration records the duration of a dispatch with its outcome.
	// Duration is recorded in seconds as a histogram for percentile calculations.
	RecordDuration(ctx context.Context, actionType string, duration time.Duration, outcome string)
}

// dispatchMetrics implements DispatchMetrics using OpenTelemetry metrics.
type dispatchMetrics struct {
	dispatchCounter metric.Int64Counter
	durationHisto   metric.Float64Histogram
}

// NewDispatchMetrics creates a new DispatchMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names (e.g., "actiongate").
// Returns error if meters cannot be initialized.
func NewDispatchMetrics(meterProvider metric.MeterProvider, namespace string) (DispatchMetrics, error) {
	meter := meterProvider.Meter(namespace)

	// Create counter for total dispatches
	dispatchCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_dispatches_total", namespace),
		metric.WithDescription("Total number of action dispatches"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch counter: %w", err)
	}

	// Create histogram for dispatch durations
	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_dispatch_duration_seconds", namespace),
		metric.WithDescription("Duration of action dispatches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &dispatchMetrics{
		dispatchCounter: dispatchCounter,
		durationHisto:   durationHisto,
	}, nil
}

// RecordDispatch increments the dispatch counter with action_type and outcome labels.
func (d *dispatchMetrics) RecordDispatch(ctx context.Context, actionType, outcome string) {
	d.dispatchCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action_type", actionType),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordDuration records the dispatch duration in seconds with action_type and outcome labels.
func (d *dispatchMetrics) RecordDuration(
	ctx context.Context,
	actionType string,
	duration time.Duration,
	outcome string,
) {
	d.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("action_type", actionType),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpDispatchMetrics is a no-op implementation of DispatchMetrics for when metrics are disabled.
type NoOpDispatchMetrics struct{}

// NewNoOpDispatchMetrics creates a no-op DispatchMetrics implementation.
func NewNoOpDispatchMetrics() DispatchMetrics {
	return &NoOpDispatchMetrics{}
}

// RecordDispatch does nothing when metrics are disabled.
func (n *NoOpDispatchMetrics) RecordDispatch(ctx context.Context, actionType, outcome string) {
	// No-op
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpDispatchMetrics) RecordDuration(
	ctx context.Context,
	actionType string,
	duration time.Duration,
	outcome string,
) {
	// No-op
}

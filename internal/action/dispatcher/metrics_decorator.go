package dispatcher

import (
	"context"
	"time"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	"github.com/actiongate/actiongate/internal/metrics"
)

// dispatcherWithMetrics wraps a Dispatcher and records a counter increment
// and a duration sample for every dispatch.
type dispatcherWithMetrics struct {
	next    Dispatcher
	metrics metrics.DispatchMetrics
}

func (d *dispatcherWithMetrics) Dispatch(ctx context.Context, request *actionDomain.Request) *Result {
	start := time.Now()
	result := d.next.Dispatch(ctx, request)

	// Requests that fail the shape check have no action type; label them
	// "unknown" so they still show up in the series.
	actionType := result.ActionType
	if actionType == "" {
		actionType = "unknown"
	}

	outcome := result.Outcome()
	d.metrics.RecordDispatch(ctx, actionType, outcome)
	d.metrics.RecordDuration(ctx, actionType, time.Since(start), outcome)

	return result
}

// NewDispatcherWithMetrics wraps a Dispatcher with dispatch metrics recording.
func NewDispatcherWithMetrics(next Dispatcher, dispatchMetrics metrics.DispatchMetrics) Dispatcher {
	return &dispatcherWithMetrics{
		next:    next,
		metrics: dispatchMetrics,
	}
}

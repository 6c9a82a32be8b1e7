package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpInstruments holds the request-level instruments shared by every
// invocation of the middleware.
type httpInstruments struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &httpInstruments{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
	}, nil
}

// HTTPMetricsMiddleware returns a Gin middleware that records request counts
// and durations with method, path, and status_code labels. Paths are labeled
// by route pattern via routeLabel, so request counts stay aggregable however
// clients spell their URLs. If the instruments cannot be created the
// middleware degrades to a pass-through instead of failing the server.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		opt := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		instruments.requestCounter.Add(c.Request.Context(), 1, opt)
		instruments.durationHisto.Record(c.Request.Context(), time.Since(start).Seconds(), opt)
	}
}

// routeLabel maps a request to its metric path label. Matched requests carry
// the registered route pattern. Unmatched requests, where gin reports an
// empty FullPath, collapse into a single "unmatched" label so clients
// probing arbitrary paths cannot grow the label space.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unmatched"
	}
	return fullPath
}

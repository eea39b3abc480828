package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Route areas used as the "area" label.
const (
	areaCredentials = "credentials"
	areaProviders   = "providers"
	areaOperations  = "operations"
	areaSystem      = "system"
	areaUnknown     = "unknown"
)

type httpMetrics struct {
	requestCounter metric.Int64Counter
	durationHisto  metric.Float64Histogram
	inFlight       metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter, namespace string) (*httpMetrics, error) {
	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_http_requests_in_flight", namespace),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestCounter: requestCounter,
		durationHisto:  durationHisto,
		inFlight:       inFlight,
	}, nil
}

// HTTPMetricsMiddleware returns a Gin middleware that records request counts, durations
// and in-flight requests. Labels are area, method, path and status_code, where path is
// the route pattern (e.g., /v1/credentials/:category) so provider ids and credential ids
// never become label values.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	m, err := newHTTPMetrics(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := sanitizePath(c.FullPath())
		area := attribute.String("area", routeArea(path))

		m.inFlight.Add(ctx, 1, metric.WithAttributes(area))
		start := time.Now()

		c.Next()

		m.inFlight.Add(ctx, -1, metric.WithAttributes(area))

		attrs := metric.WithAttributes(
			area,
			attribute.String("method", c.Request.Method),
			attribute.String("path", path),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		m.requestCounter.Add(ctx, 1, attrs)
		m.durationHisto.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// sanitizePath returns the route pattern, or "unknown" when no route matched.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// routeArea maps a route pattern to the API area it belongs to.
func routeArea(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/credentials"):
		return areaCredentials
	case strings.HasPrefix(path, "/v1/providers/:provider_id/operations"):
		return areaOperations
	case strings.HasPrefix(path, "/v1/providers"):
		return areaProviders
	case path == "/health" || path == "/ready" || path == "/metrics":
		return areaSystem
	}
	return areaUnknown
}

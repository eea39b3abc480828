package metrics

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

// NewOutboundTransport wraps base so every outbound provider call is recorded as
// http.client metrics on meterProvider. A nil base uses http.DefaultTransport.
func NewOutboundTransport(base http.RoundTripper, meterProvider metric.MeterProvider) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(
		base,
		otelhttp.WithMeterProvider(meterProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "provider " + r.Method
		}),
	)
}

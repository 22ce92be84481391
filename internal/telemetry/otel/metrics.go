package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// RequestDurationMetric is the histogram recorded for every HTTP request.
const RequestDurationMetric = "http.server.request.duration_ms"

// HTTPMetrics records request durations by route template, method and status.
type HTTPMetrics struct {
	duration otelmetric.Float64Histogram
}

// NewHTTPMetrics creates the request instruments on mp. A nil provider records nothing.
func NewHTTPMetrics(mp otelmetric.MeterProvider) (*HTTPMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	h, err := mp.Meter("bahayscout/http").Float64Histogram(
		RequestDurationMetric,
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Duration of HTTP requests."),
	)
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{duration: h}, nil
}

// Record adds one request observation.
func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), otelmetric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	))
}

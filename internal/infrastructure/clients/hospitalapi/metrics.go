package hospitalapi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type hospitalMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var hospitalMetricsInit = false
var hospitalMetricsInstruments hospitalMetrics

func ensureHospitalMetrics() {
	if hospitalMetricsInit {
		return
	}
	meter := otel.Meter("github.com/waitwell/edflow/backend/hospitalapi")

	requestCount, err := meter.Int64Counter(
		"hospital.request.count",
		metric.WithDescription("Number of hospital backend requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"hospital.request.duration",
		metric.WithDescription("Hospital backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"hospital.request.errors",
		metric.WithDescription("Number of failed hospital backend requests"),
	)
	if err != nil {
		return
	}

	hospitalMetricsInstruments = hospitalMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	hospitalMetricsInit = true
}

func recordHospitalRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration, err error) {
	ensureHospitalMetrics()
	if !hospitalMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("hospital.endpoint", endpoint),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	hospitalMetricsInstruments.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	hospitalMetricsInstruments.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		hospitalMetricsInstruments.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

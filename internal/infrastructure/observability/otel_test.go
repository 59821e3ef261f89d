package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_InstallsTraceAndMeterProviders(t *testing.T) {
	// The OTLP gRPC exporters connect lazily, so Setup succeeds without
	// a collector listening on the endpoint.
	shutdown, err := Setup(context.Background(), "edflow-test", "0.0.0", "localhost:4317")
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		// Shutdown flushes to the absent collector; the error is expected.
		_ = shutdown(ctx)
	}()

	_, traceIsSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, traceIsSDK, "expected an SDK tracer provider to be registered")

	_, meterIsSDK := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, meterIsSDK, "expected an SDK meter provider to be registered")
}

func TestInitMetrics(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics.RequestCount)
	assert.NotNil(t, metrics.RequestDuration)
}

package cache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type cacheMetrics struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
	errors metric.Int64Counter
}

var cacheMetricsInit = false
var cacheMetricsInstruments cacheMetrics

func ensureCacheMetrics() {
	if cacheMetricsInit {
		return
	}
	meter := otel.Meter("github.com/waitwell/edflow/backend/cache")

	hits, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Number of cache reads that found a value"),
	)
	if err != nil {
		return
	}
	misses, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Number of cache reads that found nothing"),
	)
	if err != nil {
		return
	}
	errors, err := meter.Int64Counter(
		"cache.errors",
		metric.WithDescription("Number of failed cache operations"),
	)
	if err != nil {
		return
	}

	cacheMetricsInstruments = cacheMetrics{hits: hits, misses: misses, errors: errors}
	cacheMetricsInit = true
}

func recordCacheRead(ctx context.Context, hit bool) {
	ensureCacheMetrics()
	if !cacheMetricsInit {
		return
	}
	if hit {
		cacheMetricsInstruments.hits.Add(ctx, 1)
	} else {
		cacheMetricsInstruments.misses.Add(ctx, 1)
	}
}

func recordCacheError(ctx context.Context, operation string) {
	ensureCacheMetrics()
	if !cacheMetricsInit {
		return
	}
	cacheMetricsInstruments.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.operation", operation),
	))
}

// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter.
// It returns the HTTP handler for the /metrics endpoint and a shutdown function.
// The shutdown function should be called on application exit for graceful cleanup.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// RegisterScheduleMetrics registers the async gauge for the schedule backlog.
// countPending runs on every scrape; when it fails the observation is skipped
// and the error goes to onError, so a flaky database cannot fail a scrape.
func RegisterScheduleMetrics(countPending func(context.Context) (int64, error), onError func(error)) error {
	meter := otel.Meter("publishplane")
	_, err := meter.Int64ObservableGauge("publishplane.schedules.pending",
		metric.WithDescription("Current number of schedules waiting to publish"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := countPending(ctx)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return nil
			}
			obs.Observe(count)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register schedule backlog gauge: %w", err)
	}
	return nil
}

package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	api "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/buildinfo"
	"github.com/texmexwithplex/unifi-dual-ip-update-route53/pkg/config"
)

const prefix = "ud"

type AppMetrics struct {
	apiCalls      api.Float64Histogram
	sourceFetches api.Int64Counter
}

// NewAppMetrics initializes the app's metrics.
// Returns nil (without error) if metrics are disabled in the configuration.
func NewAppMetrics(_ context.Context) (m *AppMetrics, shutdownFn func(ctx context.Context) error, err error) {
	cfg := config.Get()

	if !cfg.Metrics {
		return nil, nil, nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init metrics exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(buildinfo.AppName),
		semconv.ServiceVersion(buildinfo.AppVersion),
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	shutdownFn = provider.Shutdown

	meter := provider.Meter(buildinfo.AppName)

	m = &AppMetrics{}

	m.sourceFetches, err = meter.Int64Counter(
		prefix+"_source_fetches",
		api.WithDescription("The number of IP source fetches"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create "+prefix+"_source_fetches meter: %w", err)
	}

	m.apiCalls, err = meter.Float64Histogram(
		prefix+"_api_calls",
		api.WithDescription("API calls to external services and duration in milliseconds"),
		api.WithExplicitBucketBoundaries(20, 50, 100, 200, 400, 600, 800, 1000, 1500, 2500),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create "+prefix+"_api_calls meter: %w", err)
	}

	return m, shutdownFn, nil
}

//nolint:contextcheck
func (m *AppMetrics) RecordSourceFetch(source string, ok bool) {
	if m == nil {
		return
	}

	m.sourceFetches.Add(
		context.Background(),
		1,
		api.WithAttributeSet(
			attribute.NewSet(
				attribute.KeyValue{Key: "source", Value: attribute.StringValue(source)},
				attribute.KeyValue{Key: "ok", Value: attribute.BoolValue(ok)},
			),
		),
	)
}

//nolint:contextcheck
func (m *AppMetrics) RecordAPICall(service string, method string, path string, ok bool, duration time.Duration) {
	if m == nil {
		return
	}

	m.apiCalls.Record(
		context.Background(),
		float64(duration.Microseconds())/1000,
		api.WithAttributeSet(
			attribute.NewSet(
				attribute.KeyValue{Key: "service", Value: attribute.StringValue(service)},
				attribute.KeyValue{Key: "method", Value: attribute.StringValue(method)},
				attribute.KeyValue{Key: "path", Value: attribute.StringValue(path)},
				attribute.KeyValue{Key: "ok", Value: attribute.BoolValue(ok)},
			),
		),
	)
}

// Package tracing exports server spans over OTLP/HTTP.
//
// Nothing is exported unless OTEL_EXPORTER_OTLP_ENDPOINT is set; the
// otelgrpc and otelhttp handlers then run against the global no-op provider.
package tracing

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// EndpointEnv holds the collector address. Empty disables export.
const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// ServiceNameEnv overrides the service name reported with each span.
const ServiceNameEnv = "OTEL_SERVICE_NAME"

// ShutdownFunc flushes buffered spans and stops the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init points the global tracer provider and propagator at an OTLP/HTTP
// collector and reports spans as serviceName. Call the returned function
// before exit.
func Init(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	endpoint := strings.TrimSpace(os.Getenv(EndpointEnv))
	if endpoint == "" {
		return noopShutdown, nil
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}

	res, err := serviceResource(serviceName)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	install(provider)

	return provider.Shutdown, nil
}

func serviceResource(serviceName string) (*resource.Resource, error) {
	if override := strings.TrimSpace(os.Getenv(ServiceNameEnv)); override != "" {
		serviceName = override
	}

	own := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
	res, err := resource.Merge(resource.Default(), own)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	return res, nil
}

// install makes provider global and propagates W3C trace context and baggage.
func install(provider *sdktrace.TracerProvider) {
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

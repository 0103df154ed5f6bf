// Package telemetry wires OpenTelemetry tracing
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/KirkDiggler/bestiary/internal/errors"
)

// ServiceName identifies this process in traces
const ServiceName = "bestiary"

// ShutdownFunc flushes pending spans
type ShutdownFunc func(context.Context) error

// Config controls tracing setup
type Config struct {
	// Endpoint is the OTLP/HTTP collector URL; empty disables tracing
	Endpoint string
	// ServiceName defaults to ServiceName
	ServiceName string
	// Exporter overrides the OTLP exporter (tests)
	Exporter sdktrace.SpanExporter
}

// Setup installs a global tracer provider. Without an endpoint or exporter
// it returns a no-op shutdown and leaves the global no-op provider in place.
func Setup(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	if cfg == nil || (cfg.Endpoint == "" && cfg.Exporter == nil) {
		return noop, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = ServiceName
	}

	exporter := cfg.Exporter
	if exporter == nil {
		var err error
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			return noop, errors.Wrap(err, "failed to create trace exporter")
		}
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(name)))
	if err != nil {
		return noop, errors.Wrap(err, "failed to build trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

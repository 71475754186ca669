package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Tracer provides a simplified API for distributed tracing with OpenTelemetry.
// It wraps the OpenTelemetry TracerProvider and provides convenient methods for
// creating spans, recording errors, and propagating trace context across
// broker headers.
//
// A nil *Tracer is valid: spans become no-ops and propagation returns the
// context unchanged.
type Tracer struct {
	tracer *trace.TracerProvider
}

// NewClient creates and initializes a new Tracer instance with OpenTelemetry.
// It installs the provider and a W3C trace context propagator globally.
//
// Example:
//
//	tracerClient, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "pbseries",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	})
//
//	ctx, span := tracerClient.StartSpan(ctx, "ingest.message")
//	defer span.End()
func NewClient(cfg Config) (*Tracer, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		var clientOpts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(clientOpts...))
		if err != nil {
			return nil, fmt.Errorf("cannot initiate tracer exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator())

	return &Tracer{tracer: tp}, nil
}

// NewWithProvider wraps an existing provider without touching global state.
// Tests use it with an in-memory span recorder.
func NewWithProvider(tp *trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp}
}

func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// Package observe wires OpenTelemetry tracing and the Prometheus metrics
// bridge, and ties request logging to the active trace.
package observe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig describes the service to the telemetry backends.
type ProviderConfig struct {
	ServiceName    string // "evalia" when empty
	ServiceVersion string

	// TraceExporter is optional; without it spans stay in process.
	TraceExporter sdktrace.SpanExporter
}

// Telemetry owns the SDK providers installed as the OTel globals.
type Telemetry struct {
	Meters *sdkmetric.MeterProvider
	Traces *sdktrace.TracerProvider
}

// Setup installs a Prometheus-backed meter provider, a tracer provider and
// the W3C trace-context propagator as the OTel globals.
func Setup(ctx context.Context, cfg ProviderConfig) (*Telemetry, error) {
	name := cfg.ServiceName
	if name == "" {
		name = "evalia"
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(name),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	exporter, err := promexporter.New()
	if err != nil {
		return nil, fmt.Errorf("observe: prometheus exporter: %w", err)
	}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	if cfg.TraceExporter != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}

	tel := &Telemetry{
		Meters: sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exporter)),
		Traces: sdktrace.NewTracerProvider(traceOpts...),
	}
	otel.SetMeterProvider(tel.Meters)
	otel.SetTracerProvider(tel.Traces)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tel, nil
}

// Shutdown flushes spans and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Traces.Shutdown(ctx), t.Meters.Shutdown(ctx))
}

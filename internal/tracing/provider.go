// Package tracing sets up OpenTelemetry tracing.
package tracing

import (
	"context"
	"fmt"

	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider registers a global tracer provider exporting to Jaeger. Without an endpoint nothing is
// registered and the returned shutdown does nothing.
func NewProvider(c config.Tracing) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if c.JaegerEndpoint == "" {
		return noop, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(c.JaegerEndpoint)))
	if err != nil {
		return noop, fmt.Errorf("failed to create jaeger exporter: %v", err)
	}

	res := resource.NewWithAttributes("", attribute.String("service.name", c.ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}

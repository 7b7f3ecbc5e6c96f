package tracing

import (
	"context"
	"testing"

	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProvider_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := NewProvider(config.Tracing{ServiceName: "wedding-manager"})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestNewProvider(t *testing.T) {
	shutdown, err := NewProvider(config.Tracing{JaegerEndpoint: "http://localhost:14268/api/traces", ServiceName: "wedding-manager"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "span")
	span.End()

	assert.True(t, span.SpanContext().IsValid())
	// nothing listens on the endpoint, the export error is not surfaced by shutdown
	_ = shutdown(context.Background())
}

package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func TestSetup_SpansCarryIDs(t *testing.T) {
	restoreGlobals(t)
	tp, err := Setup(context.Background(), config.TracingConfig{Exporter: "none", SampleRatio: 1}, "storefront-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.True(t, sc.IsSampled())
}

func TestSetup_ExtractsTraceparent(t *testing.T) {
	restoreGlobals(t)
	tp, err := Setup(context.Background(), config.TracingConfig{Exporter: "stdout", SampleRatio: 1}, "storefront-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	header := http.Header{}
	header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.HeaderCarrier(header))

	ctx, span := otel.Tracer("test").Start(ctx, "child")
	defer span.End()

	sc := trace.SpanContextFromContext(ctx)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.NotEqual(t, "00f067aa0ba902b7", sc.SpanID().String())
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), config.TracingConfig{Exporter: "zipkin"}, "storefront-test")
	require.ErrorContains(t, err, "unknown tracing exporter")
}

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// These tests mutate the package tracer and must not run in parallel.

func TestStartSpan_NoTracer(t *testing.T) {
	SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "resolve")
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
	assert.Empty(t, TraceID(ctx))
	span.End()
}

func TestStartSpan_Recorded(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	SetTracer(tp.Tracer("test"))
	t.Cleanup(func() { SetTracer(nil) })

	ctx, parent := StartSpan(context.Background(), "resolve", attribute.String("model", "FOLD3"))
	assert.NotEmpty(t, TraceID(ctx))

	_, child := StartSpan(ctx, "tier")
	RecordError(child, errors.New("catalog down"))
	RecordError(child, nil)
	child.End()
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "tier", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "resolve", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].Parent().TraceID())
	assert.Contains(t, spans[1].Attributes(), attribute.String("model", "FOLD3"))
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := StartSpan(context.Background(), "resolve")
	assert.False(t, span.SpanContext().IsValid())
}

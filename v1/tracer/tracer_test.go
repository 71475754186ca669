package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorded(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewWithProvider(tp), rec
}

func TestTracer_SpanWithAttributesAndError(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.StartSpan(context.Background(), "ingest.message")
	tr.SetAttributes(span, map[string]interface{}{
		"topic":  "imu",
		"size":   12,
		"ratio":  0.5,
		"ok":     false,
		"frames": []int{1},
	})
	tr.RecordErrorOnSpan(span, errors.New("bad payload"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "ingest.message", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "bad payload", s.Status().Description)

	attrs := map[string]string{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "imu", attrs["topic"])
	assert.Equal(t, "12", attrs["size"])
	assert.Equal(t, "false", attrs["ok"])
	assert.Equal(t, "[1]", attrs["frames"])
}

func TestTracer_CarrierRoundTrip(t *testing.T) {
	tr, _ := newRecorded(t)

	ctx, span := tr.StartSpan(context.Background(), "producer")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	restored := tr.SetCarrierOnContext(context.Background(), carrier)
	sc := trace.SpanContextFromContext(restored)
	assert.True(t, sc.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), sc.TraceID())

	_, child := tr.StartSpan(restored, "ingest.message")
	defer child.End()
	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestTracer_NilIsNoop(t *testing.T) {
	var tr *Tracer
	ctx := context.Background()

	got, span := tr.StartSpan(ctx, "x")
	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() {
		tr.SetAttributes(span, map[string]interface{}{"a": 1})
		tr.RecordErrorOnSpan(span, errors.New("x"))
	})
	assert.Equal(t, ctx, tr.SetCarrierOnContext(ctx, nil))
}

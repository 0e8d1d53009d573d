package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_TraceAndIDs(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithSessionID(ctx, "abc-123")
	ctx = WithRunID(ctx, "run:7")

	got := map[string]interface{}{}
	for _, f := range ContextFields(ctx) {
		if f.String != "" {
			got[f.Key] = f.String
		} else {
			got[f.Key] = f.Integer == 1
		}
	}

	assert.Equal(t, sc.TraceID().String(), got["trace_id"])
	assert.Equal(t, sc.SpanID().String(), got["span_id"])
	assert.Equal(t, true, got["trace_sampled"])
	assert.Equal(t, "abc-123", got["session.id"])
	assert.Equal(t, "run:7", got["run.id"])
}

func TestWithSessionID_IgnoresInvalid(t *testing.T) {
	for _, id := range []string{"", "has space", "new\nline", strings.Repeat("x", maxIDLen+1)} {
		ctx := WithSessionID(context.Background(), id)
		assert.Empty(t, SessionIDFromContext(ctx), "id %q", id)
		ctx = WithRunID(context.Background(), id)
		assert.Empty(t, RunIDFromContext(ctx), "id %q", id)
	}
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	logs := NewTestLogger()
	ctx := WithLogger(context.Background(), logs.Logger)
	assert.Same(t, logs.Logger, FromContext(ctx))
}

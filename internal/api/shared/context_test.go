package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2) // hex-encoded

	// Each context gets its own trace ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestGetTraceIDWithoutTrace(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestGenerateFallbackTraceID(t *testing.T) {
	t.Parallel()

	fallback := generateFallbackTraceID()
	assert.Len(t, fallback, TraceIDLength*2)
}

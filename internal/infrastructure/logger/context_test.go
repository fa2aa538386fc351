package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)
	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())

	// Should return a no-op logger, not nil
	require.NotNil(t, retrieved)
	retrieved.Info("does not panic")
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, enriched, FromContext(ctx))

	enriched.Info("lookup started")
	logs := recorded.All()
	require.Len(t, logs, 1)

	hasRequestID := false
	for _, field := range logs[0].Context {
		if field.Key == "request_id" {
			hasRequestID = true
			assert.Equal(t, "req-123", field.String)
		}
	}
	assert.True(t, hasRequestID)
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	// Without a valid span the logger passes through unchanged
	result := WithTraceContext(context.Background(), logger)
	assert.Equal(t, logger, result)
}

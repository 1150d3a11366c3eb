package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsEmbeddedLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Log(ctx, LevelTrace, "Tracing.")
	assert.Contains(t, buf.String(), "Tracing.")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()
	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, slog.Default(), FromContext(WithLogger(context.Background(), nil)))
}

func TestLookup(t *testing.T) {
	t.Parallel()
	_, ok := Lookup(context.Background())
	assert.False(t, ok)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	got, ok := Lookup(WithLogger(context.Background(), logger))
	require.True(t, ok)
	assert.Same(t, logger, got)
}

func TestLevelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "TRACE", LevelName(LevelTrace))
	assert.Equal(t, "DEBUG", LevelName(slog.LevelDebug))
	assert.Equal(t, "WARN", LevelName(slog.LevelWarn))
}

//go:build unit

package zap

import (
	"context"
	"testing"

	logpkg "github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)

	return NewFromZap(zap.New(core)), logs
}

func TestLogDispatchesLevels(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(zapcore.DebugLevel)
	ctx := context.Background()

	logger.Log(ctx, logpkg.LevelDebug, "d")
	logger.Log(ctx, logpkg.LevelInfo, "i")
	logger.Log(ctx, logpkg.LevelWarn, "w")
	logger.Log(ctx, logpkg.LevelError, "e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogAppendsTraceIdentifiers(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(zapcore.InfoLevel)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "generate")
	defer span.End()

	logger.Log(ctx, logpkg.LevelInfo, "face generated", logpkg.Int("vertices", 10))

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.EqualValues(t, 10, fields["vertices"])
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved(zapcore.InfoLevel)

	logger.With(logpkg.String("request_id", "abc")).
		WithGroup("face").
		Log(context.Background(), logpkg.LevelInfo, "ok", logpkg.String("digest", "ff"))

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, map[string]any{"digest": "ff"}, fields["face"])
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	logger, _ := newObserved(zapcore.WarnLevel)

	assert.False(t, logger.Enabled(logpkg.LevelDebug))
	assert.False(t, logger.Enabled(logpkg.LevelInfo))
	assert.True(t, logger.Enabled(logpkg.LevelWarn))
	assert.True(t, logger.Enabled(logpkg.LevelError))
}

func TestNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger

	assert.NotPanics(t, func() {
		logger.Log(context.Background(), logpkg.LevelInfo, "ignored")
	})
	assert.NotNil(t, logger.Raw())
}

func TestSyncHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	logger, _ := newObserved(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, logger.Sync(ctx), context.Canceled)
	assert.NoError(t, logger.Sync(context.Background()))
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "mobilebill/internal/core/context"
)

func TestFromContext_AddsRequestAndUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := appctx.WithTrace(context.Background(), appctx.NewTraceContext("t-1", "r-1"))
	ctx = appctx.WithUser(ctx, &appctx.UserContext{Username: "admin", Role: "admin"})
	ctx = WithLogger(ctx, l)

	Info(ctx, "purchase received", "purchase_id", "PUR-1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "admin", fields["user"])
	assert.Equal(t, "PUR-1", fields["purchase_id"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	n := Nop()
	SetDefault(n)
	assert.Same(t, n, Default())
}

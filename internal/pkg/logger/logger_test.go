package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	lvl, zl, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, lvl)
	assert.Equal(t, zapcore.DebugLevel, zl)

	lvl, _, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestAdapterRoutesIntoZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetZap(zap.New(core), slog.LevelDebug)

	log := NewSlogAdapter().With("component", "test")
	log.Info("hello", "network", "pulsechain")
	log.Debug("details")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["component"])
	assert.Equal(t, "pulsechain", fields["network"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetZap(zap.New(core), slog.LevelWarn)

	Info("dropped")
	Warn("kept")
	require.Len(t, logs.All(), 1)
	assert.Equal(t, "kept", logs.All()[0].Message)
}

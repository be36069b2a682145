package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_ConvertsKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZap(zap.New(core))

	logger.Error(context.Background(), "delivery failed", "status", 500, "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "delivery failed", entries[0].Message)
	assert.EqualValues(t, 500, fields["status"])
	assert.Equal(t, "boom", fields["error"])
}

func TestZapLogger_OddArgs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZap(zap.New(core))

	logger.Info(context.Background(), "dangling", "key")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "key", logs.All()[0].ContextMap()["!BADKEY"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel("warn").String())
	assert.Equal(t, "INFO", ParseLevel("nonsense").String())
}

package log_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/memo_ive_go/shared/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmit_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	log.Emit(logger, log.LogDebug, "d", nil)
	log.Emit(logger, log.LogInfo, "i", nil)
	log.Emit(logger, log.LogWarn, "w", nil)
	log.Emit(logger, log.LogError, "e", nil)
	log.Emit(logger, log.LogLevel("loud"), "unknown", nil)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 5) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
		assert.Equal(t, zapcore.InfoLevel, entries[4].Level)
	}
}

func TestEmit_Fields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	log.Emit(logger, log.LogDebug, "filtered", nil)
	log.Emit(logger, log.LogWarn, "hook failed", map[string]any{
		"store": "Cell.energy_nuc",
		"cause": errors.New("boom"),
	})

	assert.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "Cell.energy_nuc", ctx["store"])
	assert.Equal(t, "boom", ctx["cause"])
}

func TestEmit_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		log.Emit(nil, log.LogError, "dropped", map[string]any{"k": 1})
	})
	assert.NotNil(t, log.OrNop(nil))
}

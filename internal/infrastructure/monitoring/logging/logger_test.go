package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "vendor", Value: "업피치"}, String("vendor", "업피치"))
	assert.Equal(t, Field{Key: "qty", Value: 3}, Int("qty", 3))
	assert.Equal(t, Field{Key: "amount", Value: int64(2100)}, Int64("amount", 2100))
	assert.Equal(t, Field{Key: "vol", Value: 51.5}, Float64("vol", 51.5))
	assert.Equal(t, Field{Key: "ok", Value: true}, Bool("ok", true))
	assert.Equal(t, Field{Key: "took", Value: time.Second}, Duration("took", time.Second))

	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
}

func TestLoggerLevels(t *testing.T) {
	log, logs := newObservedLogger(zapcore.DebugLevel)

	log.Debug("d")
	log.Info("i", String("k", "v"))
	log.Warn("w")
	log.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "i", entries[1].Message)
	assert.Equal(t, "v", entries[1].ContextMap()["k"])
}

func TestLoggerWithFields(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)

	child := log.With(String("vendor", "업피치"))
	child.Info("computed")
	log.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "업피치", entries[0].ContextMap()["vendor"])
	// Parent must not carry the child's fields.
	assert.NotContains(t, entries[1].ContextMap(), "vendor")
}

func TestNamed(t *testing.T) {
	log, logs := newObservedLogger(zapcore.InfoLevel)

	log.Named("billing").Named("fees").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "billing.fees", entries[0].LoggerName)
}

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must not panic and must return usable children.
	log.Debug("x")
	log.With(String("a", "b")).Named("n").Info("y")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log, logs := newObservedLogger(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("via default")
	require.Len(t, logs.All(), 1)

	// SetDefault(nil) is a no-op.
	SetDefault(nil)
	assert.NotNil(t, Default())
}

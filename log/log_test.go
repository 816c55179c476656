package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var l Logger = &logger{Logger: zap.New(core)}

	l = l.With(String("addr", "127.0.0.1:0"), Int16("api version", 1))
	l.Info("hello")
	l.Error("failed", Error("error", errors.New("boom")), Bool("legacy", true))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "hello", entries[0].Message)
	require.Equal(t, "127.0.0.1:0", entries[0].ContextMap()["addr"])
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "boom", entries[1].ContextMap()["error"])
	require.Equal(t, true, entries[1].ContextMap()["legacy"])
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Debug("dropped")
	require.NoError(t, l.Sync())
}

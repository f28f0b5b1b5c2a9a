package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}
	l.Info("calling provider", "model", "m1", "api_key", "sk-123")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "m1", fields["model"])
	require.Equal(t, "[REDACTED]", fields["api_key"])
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil).SugaredLogger)
}

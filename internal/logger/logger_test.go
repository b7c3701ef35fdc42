package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("configured", "apiKey", "AIza-secret", "provider", "gemini", "Authorization", "Bearer x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["apiKey"])
	assert.Equal(t, "[REDACTED]", fields["Authorization"])
	assert.Equal(t, "gemini", fields["provider"])
}

func TestTruncatesLongValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Debug("prompt", "text", strings.Repeat("a", 2000))

	got := logs.All()[0].ContextMap()["text"].(string)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", maxValueLen)))
	assert.Contains(t, got, "(2000 bytes)")
}

func TestWithCarriesSanitizedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("token", "t0k", "run_id", "r1")

	log.Warn("slow")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["token"])
	assert.Equal(t, "r1", fields["run_id"])
}

func TestOddKeyValueCount(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, out)
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err)
		require.NotNil(t, l.Zap())
	}
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	log, logs := observed()

	log.Info("loaded config",
		"api_key", "abc123",
		"Email", "a@example.com",
		"database_url", "postgres://u:p@h/db",
		"team_size", 4,
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "[REDACTED]", fields["Email"])
	assert.Equal(t, "[REDACTED]", fields["database_url"])
	assert.EqualValues(t, 4, fields["team_size"])
}

func TestLogger_Levels(t *testing.T) {
	log, logs := observed()

	log.Debug("d", "token", "t1")
	log.Info("i", "token", "t2")
	log.Warn("w", "token", "t3")
	log.Error("e", "token", "t4")

	entries := logs.All()
	require.Len(t, entries, 4)
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Level)
		assert.Equal(t, "[REDACTED]", e.ContextMap()["token"])
	}
}

func TestLogger_RedactsNestedMaps(t *testing.T) {
	log, logs := observed()

	log.Debug("request", "payload", map[string]interface{}{"password": "x", "role": "dev"})

	fields := logs.All()[0].ContextMap()
	payload, ok := fields["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", payload["password"])
	assert.Equal(t, "dev", payload["role"])
}

func TestLogger_WithCarriesFields(t *testing.T) {
	log, logs := observed()

	log.With("suggestion_id", "s-1").Warn("short team", "shortfall", 2)

	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "s-1", entry.ContextMap()["suggestion_id"])
}

func TestLogger_OddKeyValues(t *testing.T) {
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, sanitizeKVs([]interface{}{"a", 1, "dangling"}))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("ignored", "k", "v")
	})
}

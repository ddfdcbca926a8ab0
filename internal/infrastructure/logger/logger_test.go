package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("store created", zap.String("store_id", "abc"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"store created"`), line)
	assert.True(t, strings.Contains(line, `"store_id":"abc"`), line)
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestNewForEnvironment_ProductionForcesJSON(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewForEnvironment("production", cfg)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestContext(t *testing.T) {
	t.Run("falls back to nop logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
		assert.Empty(t, GetRequestID(context.Background()))
	})

	t.Run("request id enriches logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		ctx, log := WithRequestID(context.Background(), zap.New(core), "req-1")

		log.Info("hello")
		FromContext(ctx).Info("again")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		require.Equal(t, 2, logs.Len())
		for _, entry := range logs.All() {
			assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
		}
	})
}

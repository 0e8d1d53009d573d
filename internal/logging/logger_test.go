package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.NotNil(t, logger.zap)
	assert.Equal(t, cfg, logger.config)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestLogger_ContextAwareMethods(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}
	ctx := WithSessionID(context.Background(), "sess-1")

	tests := []struct {
		name    string
		logFunc func()
		level   zapcore.Level
		message string
	}{
		{"trace", func() { logger.Trace(ctx, "trace message") }, TraceLevel, "trace message"},
		{"debug", func() { logger.Debug(ctx, "debug message") }, zapcore.DebugLevel, "debug message"},
		{"info", func() { logger.Info(ctx, "info message") }, zapcore.InfoLevel, "info message"},
		{"warn", func() { logger.Warn(ctx, "warn message") }, zapcore.WarnLevel, "warn message"},
		{"error", func() { logger.Error(ctx, "error message") }, zapcore.ErrorLevel, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed.TakeAll()
			tt.logFunc()

			logs := observed.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
			assert.Equal(t, tt.message, logs[0].Message)
			assert.Equal(t, "sess-1", logs[0].ContextMap()["session.id"])
		})
	}
}

func TestLogger_TraceDisabled(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := &Logger{zap: zap.New(core), config: NewDefaultConfig()}

	logger.Trace(context.Background(), "hidden")
	assert.False(t, logger.Enabled(TraceLevel))
	assert.Empty(t, observed.All())
}

func TestLogger_WithAndNamed(t *testing.T) {
	logs := NewTestLogger()

	child := logs.With(zap.String("component", "embed")).Named("insights")
	child.Info(context.Background(), "batch stored", zap.Int("count", 3))

	entries := logs.FilterMessage("batch stored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "insights", entries[0].LoggerName)
	assert.Equal(t, "embed", entries[0].ContextMap()["component"])
	logs.AssertField(t, "batch stored", "count", int64(3))
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cai.log")

	cfg := NewDefaultConfig()
	cfg.Level = zapcore.InfoLevel
	cfg.Format = "json"
	cfg.Output = OutputConfig{File: path}
	cfg.Fields = map[string]string{"service": "cai"}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info(context.Background(), "hello", zap.String("api_key", "abc"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"cai"`)
	assert.Contains(t, string(data), `"api_key":"[REDACTED]"`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error(context.Background(), "dropped")
	assert.False(t, logger.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, logger.Sync())
}

func TestFromSettings(t *testing.T) {
	cfg, err := FromSettings("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	cfg, err = FromSettings("", "")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, cfg.Level)

	_, err = FromSettings("loud", "")
	assert.Error(t, err)

	_, err = FromSettings("info", "yaml")
	assert.Error(t, err)
}

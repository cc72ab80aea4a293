package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/hangman/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeGlobal 把全局日志器换成可观察的日志器，测试结束后恢复
func observeGlobal(t *testing.T, lvl zapcore.Level) *observer.ObservedLogs {
	core, logs := observer.New(lvl)

	mu.Lock()
	prevLogger, prevModules := logger, moduleLoggers
	logger = zap.New(core)
	moduleLoggers = map[string]*zap.Logger{}
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		logger, moduleLoggers = prevLogger, prevModules
		mu.Unlock()
	})
	return logs
}

func TestNewFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:       dir,
			Filename:   "hangman.log",
			MaxSize:    1,
			MaxAge:     1,
			MaxBackups: 1,
		},
	}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("game created")
	l.Error("store failed")
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "hangman.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "game created")

	errData, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errData), "store failed")
	assert.NotContains(t, string(errData), "game created")
}

func TestNewNoOutput(t *testing.T) {
	l, err := New(&config.LogConfig{Level: "info", Output: "none"})
	require.NoError(t, err)
	assert.NotNil(t, l)
	l.Info("discarded")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"info":    "info",
		"warn":    "warn",
		"error":   "error",
		"unknown": "info",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{Level: "info", Format: "console", Output: "stdout"}))
	SetLevel("error")
	assert.Equal(t, "error", Level())
	SetLevel("debug")
	assert.Equal(t, "debug", Level())
}

func TestGetModuleLogger(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{
		Level:   "info",
		Format:  "json",
		Output:  "stdout",
		Modules: map[string]string{"database": "warn"},
	}))
	assert.NotNil(t, GetModuleLogger("database"))
	assert.NotNil(t, GetModuleLogger("game"))
}

func TestNewKeepsGlobalLevel(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{Level: "warn", Output: "none"}))
	assert.Equal(t, "warn", Level())

	l, err := New(&config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Equal(t, "warn", Level(), "独立日志器不改变全局级别")

	SetLevel("error")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "全局级别变化不影响独立日志器")
}

func TestLogGameEvent(t *testing.T) {
	logs := observeGlobal(t, zapcore.InfoLevel)

	LogGameEvent("play_guess", 7, zap.String("letter", "p"))

	entries := logs.FilterMessage("game_event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "game", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "play_guess", ctx["event"])
	assert.EqualValues(t, 7, ctx["game_id"])
	assert.Equal(t, "p", ctx["letter"])
}

func TestLogDatabaseOperation(t *testing.T) {
	logs := observeGlobal(t, zapcore.DebugLevel)

	LogDatabaseOperation("insert", "games", 3*time.Millisecond, nil)
	LogDatabaseOperation("select", "attempts", time.Millisecond, errors.New("disk I/O error"))

	ok := logs.FilterMessage("database_operation").All()
	require.Len(t, ok, 1)
	assert.Equal(t, zapcore.DebugLevel, ok[0].Level)
	assert.Equal(t, "games", ok[0].ContextMap()["table"])

	failed := logs.FilterMessage("database_operation_failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "attempts", failed[0].ContextMap()["table"])
	assert.Equal(t, "disk I/O error", failed[0].ContextMap()["error"])
}

// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/domkit/internal/config"
)

// initBuffer initializes the global logger against an in-memory writer and
// resets it when the test ends.
func initBuffer(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitialize(t *testing.T) {
	t.Run("console logger with colors", func(t *testing.T) {
		buf := initBuffer(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "domkit",
			Colors:      config.ColorConfig{Info: "green"},
		})
		Named("dom").Info("rebuilt id map")
		Sync()

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, colorGreen+"INFO"+colorReset)
		assert.Contains(t, out, "domkit.dom.")
		assert.Contains(t, out, "rebuilt id map")
	})

	t.Run("json logger", func(t *testing.T) {
		buf := initBuffer(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"})
		GetLogger().Warn("query failed", zap.String("selector", "li >"))
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "query failed", entry["msg"])
		assert.Equal(t, "li >", entry["selector"])
	})

	t.Run("level filtering", func(t *testing.T) {
		buf := initBuffer(t, config.LoggerConfig{Level: "warn", Format: "json"})
		GetLogger().Info("hidden")
		GetLogger().Debug("hidden")
		Sync()
		assert.Empty(t, buf.String())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		buf := initBuffer(t, config.LoggerConfig{Level: "loud", Format: "json"})
		GetLogger().Debug("hidden")
		GetLogger().Info("shown")
		Sync()
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("rotated log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "domkit.log")
		initBuffer(t, config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1})
		GetLogger().Error("written to the file")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"written to the file"`, "the file core is always JSON")
	})

	t.Run("only the first initialization counts", func(t *testing.T) {
		buf := initBuffer(t, config.LoggerConfig{Level: "info", Format: "console", ServiceName: "First"})
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&bytes.Buffer{}))
		second := GetLogger()

		assert.Same(t, first, second)
		second.Info("test")
		Sync()
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
		require.NotNil(t, Named("dom"))
	})

	t.Run("global logger after initialization", func(t *testing.T) {
		initBuffer(t, config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}

func TestNewConsoleEncoder(t *testing.T) {
	base := zap.NewProductionEncoderConfig()
	enc := newConsoleEncoder(base)
	assert.Nil(t, base.EncodeName, "the caller's config is not modified")

	buf, err := enc.EncodeEntry(zapcore.Entry{LoggerName: "domkit.query", Message: "done"}, nil)
	require.NoError(t, err)
	defer buf.Free()
	assert.Contains(t, buf.String(), "domkit.query.\tdone")
}

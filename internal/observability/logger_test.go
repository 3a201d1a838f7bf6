// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/docmend/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitialize_JSONFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "docmend-test",
	}, zapcore.Lock(buf))

	GetLogger().Info("hello", zap.String("k", "v"))
	require.NoError(t, GetLogger().Sync())

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, "docmend-test")
}

func TestInitialize_RespectsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "warn",
		Format:      "json",
		ServiceName: "docmend-test",
	}, zapcore.Lock(buf))

	GetLogger().Info("filtered out")
	GetLogger().Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "filtered out")
	assert.Contains(t, out, "kept")
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "nonsense",
		Format:      "json",
		ServiceName: "docmend-test",
	}, zapcore.Lock(buf))

	GetLogger().Debug("dropped")
	GetLogger().Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "shown")
}

func TestGetLogger_FallbackBeforeInit(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback must be usable without panicking.
	logger.Debug("fallback logger smoke test")
}

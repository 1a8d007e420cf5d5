package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloombot/bloom/internal/config"
)

func TestNewLoggerConsoleOnly(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "debug", Console: true})
	require.NoError(t, err)
	defer l.Close()

	assert.NotNil(t, l)
	assert.Nil(t, l.file)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bloom.log")

	l, err := New(config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	zl := l.GetZerolog()
	zl.Info().Str("module", "test").Msg("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewLoggerBadLevelFallsBack(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "loud", Console: true})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, "info", l.GetZerolog().GetLevel().String())
}

func TestLoggerRedactsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bloom.log")

	l, err := New(config.LoggingConfig{Level: "info", File: path, Redaction: true})
	require.NoError(t, err)

	zl := l.GetZerolog()
	zl.Info().Str("auth", "Bearer EAAGsuperSecretGraphToken12345").Msg("outbound call")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "superSecretGraphToken")
	assert.Contains(t, string(data), "[REDACTED]")
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.WhatsApp.PhoneNumberID = "1234567890"
	cfg.WhatsApp.AccessToken = "EAAG-test-token"
	cfg.WhatsApp.VerifyToken = "hunter2"
	cfg.Assistant.APIKey = "sk-test"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "v21.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, "openai", cfg.Assistant.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Assistant.Model)
	assert.Equal(t, "/imagine", cfg.ImageGen.CommandToken)
	assert.Equal(t, "bloom", cfg.Storage.Folder)
	assert.Equal(t, 7, cfg.Capture.RetentionDays)
	assert.Equal(t, "@daily", cfg.Capture.SweepSchedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redaction)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing phone number ID", func(t *testing.T) {
		cfg := validConfig()
		cfg.WhatsApp.PhoneNumberID = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "phone number ID")
	})

	t.Run("missing access token", func(t *testing.T) {
		cfg := validConfig()
		cfg.WhatsApp.AccessToken = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "access token")
	})

	t.Run("missing verify token", func(t *testing.T) {
		cfg := validConfig()
		cfg.WhatsApp.VerifyToken = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "verify token")
	})

	t.Run("missing assistant key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Assistant.APIKey = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "assistant API key")
	})

	t.Run("unsupported provider", func(t *testing.T) {
		cfg := validConfig()
		cfg.Assistant.Provider = "gemini"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported assistant provider")
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0

		assert.Error(t, cfg.Validate())
	})

	t.Run("empty command token", func(t *testing.T) {
		cfg := validConfig()
		cfg.ImageGen.CommandToken = ""

		assert.Error(t, cfg.Validate())
	})
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration from file and environment
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	// Environment variables win over file values
	v.SetEnvPrefix("BLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()

	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", l.configPath)
		}

		if err := ValidateFile(l.configPath); err != nil {
			return nil, err
		}

		v.SetConfigFile(l.configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvKeys(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// bindEnvKeys registers every config key with viper so AutomaticEnv
// can resolve it even when no config file is present.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.host",
		"server.port",
		"server.public_base_url",
		"whatsapp.api_version",
		"whatsapp.phone_number_id",
		"whatsapp.access_token",
		"whatsapp.verify_token",
		"assistant.provider",
		"assistant.api_key",
		"assistant.model",
		"imagegen.api_key",
		"imagegen.engine",
		"imagegen.command_token",
		"imagegen.artifact_dir",
		"storage.cloud_name",
		"storage.api_key",
		"storage.api_secret",
		"storage.folder",
		"capture.dir",
		"capture.retention_days",
		"capture.sweep_schedule",
		"history.database_path",
		"logging.level",
		"logging.file",
		"logging.console",
		"logging.pretty",
		"logging.redaction",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

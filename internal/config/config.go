package config

import (
	"fmt"
	"strings"
)

// Config represents the main Bloom configuration
type Config struct {
	// HTTP server (webhook intake + generated image serving)
	Server ServerConfig `json:"server" mapstructure:"server"`

	// WhatsApp Cloud API
	WhatsApp WhatsAppConfig `json:"whatsapp" mapstructure:"whatsapp"`

	// Assistant (LLM provider)
	Assistant AssistantConfig `json:"assistant" mapstructure:"assistant"`

	// Image generation
	ImageGen ImageGenConfig `json:"imagegen" mapstructure:"imagegen"`

	// Object storage for republished images
	Storage StorageConfig `json:"storage" mapstructure:"storage"`

	// Local capture of voice notes
	Capture CaptureConfig `json:"capture" mapstructure:"capture"`

	// Conversation history
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds webhook server settings
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`

	// PublicBaseURL is the externally reachable base URL used to build
	// links to locally stored artifacts (no trailing slash).
	PublicBaseURL string `json:"public_base_url" mapstructure:"public_base_url"`
}

// WhatsAppConfig holds WhatsApp Cloud API credentials and endpoints
type WhatsAppConfig struct {
	APIVersion    string `json:"api_version" mapstructure:"api_version"`
	PhoneNumberID string `json:"phone_number_id" mapstructure:"phone_number_id"`
	AccessToken   string `json:"access_token" mapstructure:"access_token"`
	VerifyToken   string `json:"verify_token" mapstructure:"verify_token"`
}

// AssistantConfig holds LLM provider configuration
type AssistantConfig struct {
	Provider string `json:"provider" mapstructure:"provider"` // openai, anthropic
	APIKey   string `json:"api_key" mapstructure:"api_key"`
	Model    string `json:"model" mapstructure:"model"`
}

// ImageGenConfig holds image generation settings
type ImageGenConfig struct {
	APIKey string `json:"api_key" mapstructure:"api_key"`
	Engine string `json:"engine" mapstructure:"engine"`

	// CommandToken triggers the image-generation flow when present in
	// an inbound text message.
	CommandToken string `json:"command_token" mapstructure:"command_token"`

	// ArtifactDir is where generated images are written before being
	// served from PublicBaseURL.
	ArtifactDir string `json:"artifact_dir" mapstructure:"artifact_dir"`
}

// StorageConfig holds Cloudinary credentials
type StorageConfig struct {
	CloudName string `json:"cloud_name" mapstructure:"cloud_name"`
	APIKey    string `json:"api_key" mapstructure:"api_key"`
	APISecret string `json:"api_secret" mapstructure:"api_secret"`
	Folder    string `json:"folder" mapstructure:"folder"`
}

// CaptureConfig holds voice-note capture settings
type CaptureConfig struct {
	Dir           string `json:"dir" mapstructure:"dir"`
	RetentionDays int    `json:"retention_days" mapstructure:"retention_days"`
	SweepSchedule string `json:"sweep_schedule" mapstructure:"sweep_schedule"`
}

// HistoryConfig holds conversation store settings
type HistoryConfig struct {
	DatabasePath string `json:"database_path" mapstructure:"database_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		WhatsApp: WhatsAppConfig{
			APIVersion: "v21.0",
		},
		Assistant: AssistantConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		ImageGen: ImageGenConfig{
			Engine:       "stable-diffusion-xl-1024-v1-0",
			CommandToken: "/imagine",
			ArtifactDir:  "images",
		},
		Storage: StorageConfig{
			Folder: "bloom",
		},
		Capture: CaptureConfig{
			Dir:           "media",
			RetentionDays: 7,
			SweepSchedule: "@daily",
		},
		History: HistoryConfig{
			DatabasePath: "bloom.db",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    false,
			Redaction: true,
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.WhatsApp.PhoneNumberID == "" {
		return fmt.Errorf("whatsapp phone number ID is required")
	}
	if c.WhatsApp.AccessToken == "" {
		return fmt.Errorf("whatsapp access token is required")
	}
	if c.WhatsApp.VerifyToken == "" {
		return fmt.Errorf("whatsapp webhook verify token is required")
	}
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant API key is required")
	}

	switch c.Assistant.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported assistant provider: %s", c.Assistant.Provider)
	}

	if c.ImageGen.CommandToken == "" {
		return fmt.Errorf("image generation command token cannot be empty")
	}
	if strings.TrimSpace(c.ImageGen.CommandToken) != c.ImageGen.CommandToken {
		return fmt.Errorf("image generation command token cannot contain surrounding spaces")
	}

	return nil
}

package assistant

import (
	"context"
	"fmt"

	"github.com/bloombot/bloom/internal/config"
	"github.com/bloombot/bloom/internal/history"
)

// ChatProvider is an interface for LLM API providers
type ChatProvider interface {
	// Complete requests a completion over an ordered turn sequence,
	// with the persona system prompt prepended.
	Complete(ctx context.Context, systemPrompt string, turns []history.Turn) (string, error)

	// AnalyzeImage issues a single vision request for an image URL
	AnalyzeImage(ctx context.Context, imageURL string, prompt string) (string, error)

	// Name returns the provider name
	Name() string
}

// NewProvider creates a chat provider from configuration
func NewProvider(cfg config.AssistantConfig) (ChatProvider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

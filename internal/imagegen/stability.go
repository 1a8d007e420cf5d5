// Package imagegen turns free-text prompts into locally served image
// artifacts via the Stability AI REST API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/config"
)

const defaultBaseURL = "https://api.stability.ai"

// Client generates images from text prompts
type Client struct {
	baseURL       string
	apiKey        string
	engine        string
	artifactDir   string
	publicBaseURL string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a new image generation client. Generated artifacts
// are written under cfg.ArtifactDir and addressed from publicBaseURL.
func NewClient(cfg config.ImageGenConfig, publicBaseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:       defaultBaseURL,
		apiKey:        cfg.APIKey,
		engine:        cfg.Engine,
		artifactDir:   cfg.ArtifactDir,
		publicBaseURL: publicBaseURL,
		httpClient:    http.DefaultClient,
		logger:        logger.With().Str("module", "imagegen").Logger(),
	}
}

// generationRequest is the text-to-image request body
type generationRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
}

type textPrompt struct {
	Text string `json:"text"`
}

// generationResponse is the text-to-image response body
type generationResponse struct {
	Artifacts []artifact `json:"artifacts"`
}

type artifact struct {
	Base64       string `json:"base64"`
	FinishReason string `json:"finishReason"`
}

// Generate produces images for a prompt and returns their public URLs
// in generation order. An empty result is reported as an error.
func (c *Client) Generate(ctx context.Context, prompt string) ([]string, error) {
	body, err := json.Marshal(generationRequest{
		TextPrompts: []textPrompt{{Text: prompt}},
		CfgScale:    7,
		Width:       1024,
		Height:      1024,
		Samples:     1,
		Steps:       30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/generation/%s/text-to-image", c.baseURL, c.engine)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation failed with status: %d", resp.StatusCode)
	}

	var decoded generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	if len(decoded.Artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts returned")
	}

	if err := os.MkdirAll(c.artifactDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	urls := make([]string, 0, len(decoded.Artifacts))
	for _, art := range decoded.Artifacts {
		data, err := base64.StdEncoding.DecodeString(art.Base64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode artifact: %w", err)
		}

		name := uuid.NewString() + ".png"
		if err := os.WriteFile(filepath.Join(c.artifactDir, name), data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write artifact: %w", err)
		}

		urls = append(urls, fmt.Sprintf("%s/images/%s", c.publicBaseURL, name))
	}

	c.logger.Info().
		Int("count", len(urls)).
		Str("engine", c.engine).
		Msg("Images generated")

	return urls, nil
}

package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/config"
	"github.com/bloombot/bloom/internal/storage"
)

const maxMediaSize = 16 * 1024 * 1024 // 16MB, the Cloud API media ceiling

// Media resolves platform media identifiers to bytes and either
// persists them locally (voice notes) or republishes them to durable
// storage (images).
type Media struct {
	baseURL     string
	apiVersion  string
	accessToken string
	captureDir  string
	folder      string
	uploader    storage.Uploader
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewMedia creates a new media pipeline
func NewMedia(cfg config.WhatsAppConfig, capture config.CaptureConfig, folder string, uploader storage.Uploader, logger zerolog.Logger) *Media {
	return &Media{
		baseURL:     defaultGraphBaseURL,
		apiVersion:  cfg.APIVersion,
		accessToken: cfg.AccessToken,
		captureDir:  capture.Dir,
		folder:      folder,
		uploader:    uploader,
		httpClient:  http.DefaultClient,
		logger:      logger.With().Str("module", "media").Logger(),
	}
}

// mediaMetadata is the media-metadata endpoint response
type mediaMetadata struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// ResolveDownloadURL resolves a media ID to its transient download URL.
// The URL expires; it must be re-resolved for every use.
func (m *Media) ResolveDownloadURL(ctx context.Context, mediaID string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", m.baseURL, m.apiVersion, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata fetch failed with status: %d", resp.StatusCode)
	}

	var meta mediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("failed to decode metadata: %w", err)
	}
	if meta.URL == "" {
		return "", fmt.Errorf("metadata carries no download URL")
	}

	return meta.URL, nil
}

// FetchAndStore downloads media bytes and stores them according to
// kind: audio is written under the local capture folder, images are
// republished to object storage. Detail carries the stored path or
// public URL on success. All failure stages collapse to one error
// result; the caller is never shown which stage failed.
func (m *Media) FetchAndStore(ctx context.Context, mediaID string, kind MediaKind) DeliveryResult {
	downloadURL, err := m.ResolveDownloadURL(ctx, mediaID)
	if err != nil {
		m.logger.Error().Err(err).Str("media_id", mediaID).Msg("Failed to resolve download URL")
		return Failed(ErrDetailMedia)
	}

	data, contentType, err := m.download(ctx, downloadURL)
	if err != nil {
		m.logger.Error().Err(err).Str("media_id", mediaID).Msg("Failed to download media")
		return Failed(ErrDetailMedia)
	}

	switch kind {
	case KindAudio:
		path, err := m.saveLocal(mediaID, kind, contentType, data)
		if err != nil {
			m.logger.Error().Err(err).Str("media_id", mediaID).Msg("Failed to save media locally")
			return Failed(ErrDetailMedia)
		}
		m.logger.Info().Str("media_id", mediaID).Str("path", path).Msg("Audio captured")
		return Succeeded(path)

	case KindImage:
		publicURL, err := m.uploader.Upload(ctx, data, m.folder)
		if err != nil {
			m.logger.Error().Err(err).Str("media_id", mediaID).Msg("Failed to upload media")
			return Failed(ErrDetailMedia)
		}
		m.logger.Info().Str("media_id", mediaID).Str("url", publicURL).Msg("Image republished")
		return Succeeded(publicURL)

	default:
		m.logger.Error().Str("kind", string(kind)).Msg("Unknown media kind")
		return Failed(ErrDetailMedia)
	}
}

// download fetches raw bytes from a transient URL
func (m *Media) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media bytes: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// saveLocal writes bytes under the capture folder keyed by kind, with
// an extension derived from the response content type.
func (m *Media) saveLocal(mediaID string, kind MediaKind, contentType string, data []byte) (string, error) {
	dir := filepath.Join(m.captureDir, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create capture directory: %w", err)
	}

	path := filepath.Join(dir, mediaID+"."+extensionFor(contentType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return path, nil
}

// extensionFor derives a file extension from a content type header
func extensionFor(contentType string) string {
	// "audio/ogg; codecs=opus" -> "ogg"
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	parts := strings.Split(strings.TrimSpace(contentType), "/")
	if len(parts) != 2 || parts[1] == "" {
		return "bin"
	}
	return parts[1]
}

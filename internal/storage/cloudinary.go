package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/config"
)

// CloudinaryUploader implements Uploader on Cloudinary
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	logger zerolog.Logger
}

// NewCloudinaryUploader creates a new Cloudinary uploader
func NewCloudinaryUploader(cfg config.StorageConfig, logger zerolog.Logger) (*CloudinaryUploader, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryUploader{
		client: client,
		logger: logger.With().Str("module", "storage").Logger(),
	}, nil
}

// Upload publishes bytes under the given logical folder and returns the
// public URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	resp, err := u.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary returned no URL")
	}

	u.logger.Info().
		Str("folder", folder).
		Str("url", resp.SecureURL).
		Int("size", len(data)).
		Msg("Image uploaded")

	return resp.SecureURL, nil
}

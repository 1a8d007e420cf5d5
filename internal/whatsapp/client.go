package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/config"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

// Client dispatches outbound messages through the Cloud API
type Client struct {
	baseURL       string
	apiVersion    string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a new Cloud API client
func NewClient(cfg config.WhatsAppConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:       defaultGraphBaseURL,
		apiVersion:    cfg.APIVersion,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		httpClient:    http.DefaultClient,
		logger:        logger.With().Str("module", "whatsapp").Logger(),
	}
}

// outboundEnvelope is the fixed reply envelope for the messages endpoint
type outboundEnvelope struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type,omitempty"`
	To               string           `json:"to,omitempty"`
	Context          *replyContext    `json:"context,omitempty"`
	Type             string           `json:"type,omitempty"`
	Text             *textPayload     `json:"text,omitempty"`
	Image            *imagePayload    `json:"image,omitempty"`
	Status           string           `json:"status,omitempty"`
	MessageID        string           `json:"message_id,omitempty"`
}

type replyContext struct {
	MessageID string `json:"message_id"`
}

type textPayload struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type imagePayload struct {
	Link string `json:"link"`
}

// SendText sends a text reply correlated to an inbound message
func (c *Client) SendText(ctx context.Context, to string, body string, replyToID string) DeliveryResult {
	envelope := outboundEnvelope{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Context:          &replyContext{MessageID: replyToID},
		Type:             "text",
		Text:             &textPayload{PreviewURL: false, Body: body},
	}

	if err := c.post(ctx, envelope); err != nil {
		c.logger.Error().Err(err).Str("to", to).Msg("Failed to send text message")
		return Failed(ErrDetailSend)
	}

	c.logger.Info().Str("to", to).Msg("Text message sent")
	return Succeeded("message sent")
}

// SendImage sends an image reply referencing a public URL
func (c *Client) SendImage(ctx context.Context, to string, imageURL string, replyToID string) DeliveryResult {
	envelope := outboundEnvelope{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Context:          &replyContext{MessageID: replyToID},
		Type:             "image",
		Image:            &imagePayload{Link: imageURL},
	}

	if err := c.post(ctx, envelope); err != nil {
		c.logger.Error().Err(err).Str("to", to).Msg("Failed to send image message")
		return Failed(ErrDetailSend)
	}

	c.logger.Info().Str("to", to).Str("image_url", imageURL).Msg("Image message sent")
	return Succeeded("image sent")
}

// MarkRead marks an inbound message as read
func (c *Client) MarkRead(ctx context.Context, messageID string) DeliveryResult {
	envelope := outboundEnvelope{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}

	if err := c.post(ctx, envelope); err != nil {
		c.logger.Error().Err(err).Str("message_id", messageID).Msg("Failed to mark message as read")
		return Failed(ErrDetailSend)
	}

	return Succeeded("message marked as read")
}

// post delivers an envelope to the messages endpoint
func (c *Client) post(ctx context.Context, envelope outboundEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain for connection reuse; the body is not reported
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("send failed with status: %d", resp.StatusCode)
	}

	return nil
}

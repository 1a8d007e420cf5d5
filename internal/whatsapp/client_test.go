package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloombot/bloom/internal/config"
)

func testWhatsAppConfig() config.WhatsAppConfig {
	return config.WhatsAppConfig{
		APIVersion:    "v21.0",
		PhoneNumberID: "10987654321",
		AccessToken:   "EAAG-test",
		VerifyToken:   "hunter2",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(testWhatsAppConfig(), zerolog.New(os.Stdout).Level(zerolog.Disabled))
	c.baseURL = srv.URL
	return c
}

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotEnvelope outboundEnvelope
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusOK)
	})

	result := c.SendText(context.Background(), "15551234567", "hello there", "wamid.abc")

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "/v21.0/10987654321/messages", gotPath)
	assert.Equal(t, "Bearer EAAG-test", gotAuth)

	assert.Equal(t, "whatsapp", gotEnvelope.MessagingProduct)
	assert.Equal(t, "individual", gotEnvelope.RecipientType)
	assert.Equal(t, "15551234567", gotEnvelope.To)
	assert.Equal(t, "text", gotEnvelope.Type)
	require.NotNil(t, gotEnvelope.Context)
	assert.Equal(t, "wamid.abc", gotEnvelope.Context.MessageID)
	require.NotNil(t, gotEnvelope.Text)
	assert.Equal(t, "hello there", gotEnvelope.Text.Body)
	assert.False(t, gotEnvelope.Text.PreviewURL)
}

func TestSendImage(t *testing.T) {
	var gotEnvelope outboundEnvelope
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusOK)
	})

	result := c.SendImage(context.Background(), "15551234567", "https://cdn.example.com/x.png", "wamid.abc")

	assert.True(t, result.OK())
	assert.Equal(t, "image", gotEnvelope.Type)
	require.NotNil(t, gotEnvelope.Image)
	assert.Equal(t, "https://cdn.example.com/x.png", gotEnvelope.Image.Link)
	assert.Nil(t, gotEnvelope.Text)
}

func TestMarkRead(t *testing.T) {
	var gotEnvelope outboundEnvelope
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusOK)
	})

	result := c.MarkRead(context.Background(), "wamid.abc")

	assert.True(t, result.OK())
	assert.Equal(t, "read", gotEnvelope.Status)
	assert.Equal(t, "wamid.abc", gotEnvelope.MessageID)
	assert.Empty(t, gotEnvelope.To)
}

func TestSendTextNon2xxCollapsesToFixedDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":190,"message":"token expired"}}`, http.StatusUnauthorized)
	})

	result := c.SendText(context.Background(), "15551234567", "hi", "wamid.abc")

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, ErrDetailSend, result.Detail)
	// The structured upstream error is not preserved
	assert.NotContains(t, result.Detail, "190")
}

func TestSendTextTransportError(t *testing.T) {
	c := NewClient(testWhatsAppConfig(), zerolog.New(os.Stdout).Level(zerolog.Disabled))
	c.baseURL = "http://127.0.0.1:1" // nothing listens here

	result := c.SendText(context.Background(), "15551234567", "hi", "wamid.abc")

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, ErrDetailSend, result.Detail)
}

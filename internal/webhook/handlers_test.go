package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloombot/bloom/internal/router"
	"github.com/bloombot/bloom/internal/whatsapp"
)

// fakeRouter records dispatched messages
type fakeRouter struct {
	messages []router.Message
	result   whatsapp.DeliveryResult
}

func (f *fakeRouter) Dispatch(_ context.Context, msg router.Message) whatsapp.DeliveryResult {
	f.messages = append(f.messages, msg)
	return f.result
}

func newTestServer(t *testing.T) (*Server, *fakeRouter) {
	t.Helper()
	fr := &fakeRouter{result: whatsapp.Succeeded("ok")}

	s, err := NewServer(ServerOptions{VerifyToken: "hunter2"}, fr,
		zerolog.New(os.Stdout).Level(zerolog.Disabled))
	require.NoError(t, err)

	return s, fr
}

func verifyRequest(mode, challenge, token string) *http.Request {
	q := url.Values{}
	if mode != "" {
		q.Set("hub.mode", mode)
	}
	if challenge != "" {
		q.Set("hub.challenge", challenge)
	}
	if token != "" {
		q.Set("hub.verify_token", token)
	}
	return httptest.NewRequest(http.MethodGet, "/whatsapp/webhook?"+q.Encode(), nil)
}

func TestVerificationEchoesChallenge(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, verifyRequest("subscribe", "challenge-123", "hunter2"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-123", rec.Body.String())
}

func TestVerificationRejections(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"wrong token", verifyRequest("subscribe", "challenge-123", "wrong")},
		{"wrong mode", verifyRequest("unsubscribe", "challenge-123", "hunter2")},
		{"missing token", verifyRequest("subscribe", "challenge-123", "")},
		{"missing mode", verifyRequest("", "challenge-123", "hunter2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, tt.req)

			body := rec.Body.String()
			assert.Equal(t, verificationError, body)
			assert.NotContains(t, body, "challenge-123")
			assert.NotContains(t, body, "hunter2")
		})
	}
}

func deliver(t *testing.T, s *Server, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDeliveryTextMessage(t *testing.T) {
	s, fr := newTestServer(t)

	rec := deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.1", "from": "15551234567", "type": "text", "text": {"body": "hello bloom"}}
		]}}]}]
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fr.messages, 1)
	msg := fr.messages[0]
	assert.Equal(t, "wamid.1", msg.ID)
	assert.Equal(t, "15551234567", msg.From)
	assert.Equal(t, router.TypeText, msg.Type)
	assert.Equal(t, "hello bloom", msg.Text)
}

func TestDeliveryImageMessage(t *testing.T) {
	s, fr := newTestServer(t)

	deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.2", "from": "u", "type": "image", "image": {"id": "media-5", "caption": "my plant"}}
		]}}]}]
	}`)

	require.Len(t, fr.messages, 1)
	assert.Equal(t, router.TypeImage, fr.messages[0].Type)
	assert.Equal(t, "media-5", fr.messages[0].MediaID)
	assert.Equal(t, "my plant", fr.messages[0].Caption)
}

func TestDeliveryAudioMessage(t *testing.T) {
	s, fr := newTestServer(t)

	deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.3", "from": "u", "type": "audio", "audio": {"id": "media-6"}}
		]}}]}]
	}`)

	require.Len(t, fr.messages, 1)
	assert.Equal(t, router.TypeAudio, fr.messages[0].Type)
	assert.Equal(t, "media-6", fr.messages[0].MediaID)
}

func TestDeliveryUnknownTypeIsNormalized(t *testing.T) {
	s, fr := newTestServer(t)

	deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.4", "from": "u", "type": "sticker"}
		]}}]}]
	}`)

	require.Len(t, fr.messages, 1)
	assert.Equal(t, router.TypeUnknown, fr.messages[0].Type)
}

func TestDeliveryWithoutMessagesIsAcknowledged(t *testing.T) {
	s, fr := newTestServer(t)

	for _, payload := range []string{
		`{}`,
		`{"entry": []}`,
		`{"entry": [{"changes": []}]}`,
		`{"entry": [{"changes": [{"value": {}}]}]}`,
		`{"entry": [{"changes": [{"value": {"statuses": [{"id": "wamid.9"}]}}]}]}`,
	} {
		rec := deliver(t, s, payload)
		assert.Equal(t, http.StatusOK, rec.Code, payload)
	}

	// No collaborator was invoked for any of them
	assert.Empty(t, fr.messages)
}

func TestDeliveryMalformedJSONIsAcknowledged(t *testing.T) {
	s, fr := newTestServer(t)

	rec := deliver(t, s, `{"entry": [`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, fr.messages)
}

func TestDeliveryAcknowledgedDespiteFlowFailure(t *testing.T) {
	s, fr := newTestServer(t)
	fr.result = whatsapp.Failed(whatsapp.ErrDetailSend)

	rec := deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.1", "from": "u", "type": "text", "text": {"body": "hi"}}
		]}}]}]
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestOnlyFirstMessageIsProcessed(t *testing.T) {
	s, fr := newTestServer(t)

	deliver(t, s, `{
		"entry": [{"changes": [{"value": {"messages": [
			{"id": "wamid.first", "from": "u", "type": "text", "text": {"body": "one"}},
			{"id": "wamid.second", "from": "u", "type": "text", "text": {"body": "two"}}
		]}}]}]
	}`)

	require.Len(t, fr.messages, 1)
	assert.Equal(t, "wamid.first", fr.messages[0].ID)
}

func TestVerifyHandshake(t *testing.T) {
	echo, ok := VerifyHandshake("subscribe", "c", "secret", "secret")
	assert.True(t, ok)
	assert.Equal(t, "c", echo)

	_, ok = VerifyHandshake("subscribe", "c", "", "")
	assert.False(t, ok, "empty tokens never verify")
}

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxDeliveryBytes int64 = 1 << 20 // 1 MiB

// verificationError is the fixed handshake rejection body. It never
// echoes the challenge and never leaks the configured token.
const verificationError = "Error verifying token"

// VerifyHandshake checks the platform's verification handshake. It
// returns the challenge verbatim only for a subscribe request carrying
// the configured token.
func VerifyHandshake(mode string, challenge string, token string, verifyToken string) (string, bool) {
	if mode == "subscribe" && token != "" && token == verifyToken {
		return challenge, true
	}
	return "", false
}

// handleVerification answers the webhook verification handshake
func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	challenge := query.Get("hub.challenge")
	token := query.Get("hub.verify_token")

	echo, ok := VerifyHandshake(mode, challenge, token, s.options.VerifyToken)
	if !ok {
		s.logger.Warn().Str("mode", mode).Msg("Webhook verification rejected")
		fmt.Fprint(w, verificationError)
		return
	}

	s.logger.Info().Msg("Webhook verified")
	fmt.Fprint(w, echo)
}

// handleDelivery accepts one delivery envelope. The platform always
// receives a success status, whatever happens downstream; anything else
// would make it retry the same delivery indefinitely.
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	s.inFlightReqs.Add(1)
	defer s.inFlightReqs.Done()

	traceID, _ := gonanoid.New()
	logger := s.logger.With().Str("trace_id", traceID).Logger()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDeliveryBytes))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read delivery body")
		s.acknowledge(w)
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Warn().Err(err).Msg("Ignoring undecodable delivery")
		s.acknowledge(w)
		return
	}

	raw, ok := envelope.firstMessage()
	if !ok {
		logger.Debug().Msg("Ignoring delivery without messages")
		s.acknowledge(w)
		return
	}

	msg := normalize(raw)
	logger.Info().
		Str("message_id", msg.ID).
		Str("from", msg.From).
		Str("type", string(msg.Type)).
		Msg("Delivery received")

	// The dispatch is synchronous within this delivery; the router
	// contains every downstream failure.
	result := s.router.Dispatch(context.WithoutCancel(r.Context()), msg)
	logger.Info().
		Str("message_id", msg.ID).
		Str("status", string(result.Status)).
		Str("detail", result.Detail).
		Msg("Delivery processed")

	s.acknowledge(w)
}

// acknowledge answers a delivery with the fixed success status
func (s *Server) acknowledge(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

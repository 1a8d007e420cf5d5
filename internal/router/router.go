// Package router classifies normalized inbound messages and drives
// them through the per-type processing flows. All collaborator
// failures are contained here; dispatch never returns an error to the
// intake path.
package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/whatsapp"
)

// MessageType is the inbound message type reported by the platform
type MessageType string

const (
	TypeText    MessageType = "text"
	TypeImage   MessageType = "image"
	TypeAudio   MessageType = "audio"
	TypeUnknown MessageType = "unknown"
)

// Message is one normalized inbound message, scoped to one delivery
type Message struct {
	ID      string
	From    string
	Type    MessageType
	Text    string
	MediaID string
	Caption string
}

// Flow identifies the processing path chosen for a message
type Flow string

const (
	FlowCommand Flow = "command"
	FlowText    Flow = "text"
	FlowAudio   Flow = "audio"
	FlowImage   Flow = "image"
	FlowDrop    Flow = "drop"
)

// Dispatcher sends replies back through the chat platform
type Dispatcher interface {
	SendText(ctx context.Context, to string, body string, replyToID string) whatsapp.DeliveryResult
	SendImage(ctx context.Context, to string, imageURL string, replyToID string) whatsapp.DeliveryResult
}

// MediaFetcher resolves and stores platform media
type MediaFetcher interface {
	FetchAndStore(ctx context.Context, mediaID string, kind whatsapp.MediaKind) whatsapp.DeliveryResult
}

// Responder generates assistant replies
type Responder interface {
	GenerateTextReply(ctx context.Context, userID string, userText string) string
	AnalyzeImage(ctx context.Context, userID string, imageURL string, caption string) string
}

// ImageGenerator turns a prompt into an ordered list of image URLs
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

// Router drives one inbound message through its flow
type Router struct {
	dispatcher   Dispatcher
	media        MediaFetcher
	responder    Responder
	generator    ImageGenerator
	commandToken string
	tokenPattern *regexp.Regexp
	logger       zerolog.Logger
}

// NewRouter creates a new message router. commandToken selects the
// image-generation flow when present in a text message.
func NewRouter(dispatcher Dispatcher, media MediaFetcher, responder Responder, generator ImageGenerator, commandToken string, logger zerolog.Logger) *Router {
	return &Router{
		dispatcher:   dispatcher,
		media:        media,
		responder:    responder,
		generator:    generator,
		commandToken: commandToken,
		tokenPattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(commandToken)),
		logger:       logger.With().Str("module", "router").Logger(),
	}
}

// Classify evaluates the classification rules once, in order
func (r *Router) Classify(msg Message) Flow {
	switch msg.Type {
	case TypeText:
		if strings.Contains(strings.ToLower(msg.Text), strings.ToLower(r.commandToken)) {
			return FlowCommand
		}
		return FlowText
	case TypeAudio:
		return FlowAudio
	case TypeImage:
		return FlowImage
	default:
		return FlowDrop
	}
}

// Dispatch drives the message through its classified flow and returns
// the outcome. Callers may log the result but are not required to act
// on it.
func (r *Router) Dispatch(ctx context.Context, msg Message) whatsapp.DeliveryResult {
	flow := r.Classify(msg)

	r.logger.Info().
		Str("message_id", msg.ID).
		Str("from", msg.From).
		Str("type", string(msg.Type)).
		Str("flow", string(flow)).
		Msg("Message classified")

	switch flow {
	case FlowCommand:
		return r.commandFlow(ctx, msg)
	case FlowText:
		return r.textFlow(ctx, msg)
	case FlowAudio:
		return r.audioFlow(ctx, msg)
	case FlowImage:
		return r.imageFlow(ctx, msg)
	default:
		return whatsapp.Succeeded("dropped")
	}
}

// commandFlow generates images for the prompt left after stripping the
// command token and replies with the first one. Generation failures
// drop the message silently; the user gets no reply.
func (r *Router) commandFlow(ctx context.Context, msg Message) whatsapp.DeliveryResult {
	prompt := strings.TrimSpace(r.tokenPattern.ReplaceAllString(msg.Text, ""))

	urls, err := r.generator.Generate(ctx, prompt)
	if err != nil || len(urls) == 0 {
		r.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Image generation failed, dropping message")
		return whatsapp.Failed("image generation failed")
	}

	// Only the first generated image is sent
	return r.dispatcher.SendImage(ctx, msg.From, urls[0], msg.ID)
}

// textFlow answers a plain chat message
func (r *Router) textFlow(ctx context.Context, msg Message) whatsapp.DeliveryResult {
	reply := r.responder.GenerateTextReply(ctx, msg.From, msg.Text)
	return r.dispatcher.SendText(ctx, msg.From, reply, msg.ID)
}

// audioFlow captures a voice note. No reply is sent either way.
func (r *Router) audioFlow(ctx context.Context, msg Message) whatsapp.DeliveryResult {
	result := r.media.FetchAndStore(ctx, msg.MediaID, whatsapp.KindAudio)
	if !result.OK() {
		r.logger.Warn().Str("message_id", msg.ID).Msg("Voice note capture failed")
	}
	return result
}

// imageFlow republishes the image, analyzes it, and replies with the
// analysis. A media failure drops the message without a reply.
func (r *Router) imageFlow(ctx context.Context, msg Message) whatsapp.DeliveryResult {
	stored := r.media.FetchAndStore(ctx, msg.MediaID, whatsapp.KindImage)
	if !stored.OK() {
		r.logger.Warn().Str("message_id", msg.ID).Msg("Image fetch failed, dropping message")
		return stored
	}

	analysis := r.responder.AnalyzeImage(ctx, msg.From, stored.Detail, msg.Caption)
	return r.dispatcher.SendText(ctx, msg.From, analysis, msg.ID)
}

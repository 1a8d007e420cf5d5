package assistant

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/history"
)

// Orchestrator builds context-aware model requests and records the
// resulting conversation turns. Collaborator failures never escape it:
// callers always receive usable reply text.
type Orchestrator struct {
	provider ChatProvider
	store    history.Store
	logger   zerolog.Logger
}

// NewOrchestrator creates a new response orchestrator
func NewOrchestrator(provider ChatProvider, store history.Store, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		store:    store,
		logger:   logger.With().Str("module", "assistant").Logger(),
	}
}

// GenerateTextReply produces a reply to a user's text message over the
// full conversation history. The user turn is recorded before the
// completion attempt; the assistant turn only after a successful one.
func (o *Orchestrator) GenerateTextReply(ctx context.Context, userID string, userText string) string {
	if err := o.store.Append(ctx, userID, history.RoleUser, userText); err != nil {
		o.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record user turn")
		return FallbackReply
	}

	turns, err := o.store.Fetch(ctx, userID)
	if err != nil {
		o.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch conversation")
		return FallbackReply
	}

	reply, err := o.provider.Complete(ctx, SystemPrompt, turns)
	if err != nil {
		o.logger.Error().Err(err).
			Str("user_id", userID).
			Str("provider", o.provider.Name()).
			Msg("Completion failed")
		return FallbackReply
	}

	if err := o.store.Append(ctx, userID, history.RoleAssistant, reply); err != nil {
		o.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record assistant turn")
	}

	return reply
}

// AnalyzeImage produces an analysis of an image the user sent. Only the
// assistant's answer is recorded as a turn; the image itself is not.
func (o *Orchestrator) AnalyzeImage(ctx context.Context, userID string, imageURL string, caption string) string {
	prompt := caption
	if prompt == "" {
		prompt = DefaultImagePrompt
	}

	analysis, err := o.provider.AnalyzeImage(ctx, imageURL, prompt)
	if err != nil {
		o.logger.Error().Err(err).
			Str("user_id", userID).
			Str("provider", o.provider.Name()).
			Msg("Image analysis failed")
		return FallbackReply
	}

	if err := o.store.Append(ctx, userID, history.RoleAssistant, analysis); err != nil {
		o.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record assistant turn")
	}

	return analysis
}

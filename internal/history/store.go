// Package history stores per-user conversation turns. Turns are
// append-only and returned in arrival order; nothing here ever updates
// or deletes a recorded turn.
package history

import "context"

// Role identifies who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one recorded utterance in a user's conversation
type Turn struct {
	Role    Role
	Content string
}

// Store is the conversation history contract consumed by the assistant
type Store interface {
	// Fetch returns all turns for a user in arrival order
	Fetch(ctx context.Context, userID string) ([]Turn, error)

	// Append records a new turn for a user
	Append(ctx context.Context, userID string, role Role, content string) error
}

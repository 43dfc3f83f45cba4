package model

import "context"

// StateRepository persists conversation state in store mode.
type StateRepository interface {
	// Load returns nil without error when key has no entry.
	Load(ctx context.Context, key string) (*ConversationState, error)

	// Save replaces the entry for key and refreshes its expiry.
	Save(ctx context.Context, key string, state ConversationState) error

	// Delete removes the entry for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

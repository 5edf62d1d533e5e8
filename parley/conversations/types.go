package conversations

import (
	"context"
	"time"
)

// per-conversation provider chaining state. A conversation is 1:1 with a
// chat; Version increases with every successful update and guards against
// two concurrent turns clobbering each other's chain pointer.
type ConversationState struct {
	ConversationID     string    `json:"conversation_id"`
	UserID             string    `json:"user_id"`
	PreviousResponseID *string   `json:"previous_response_id,omitempty"`
	TurnCount          int       `json:"turn_count"`
	TotalTokens        int64     `json:"total_tokens"`
	LastActivity       time.Time `json:"last_activity"`
	RelevanceScore     *float64  `json:"relevance_score,omitempty"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// outcome of a successful provider call applied to conversation state
type TurnUpdate struct {
	// provider-assigned response identifier to chain the next turn from
	ResponseID string

	// provider-reported token usage; when zero the caller supplies an
	// estimate instead
	Tokens int64
}

// the chaining portion of the next provider request. Built purely from the
// recorded state; construction does not mutate anything.
type RequestFragment struct {
	PreviousResponseID *string `json:"previous_response_id,omitempty"`
	Input              string  `json:"input"`
}

// persistence for conversation state. Updates are version-guarded: an update
// against a stale version must not be applied.
type Store interface {
	Create(ctx context.Context, state *ConversationState) error

	Get(ctx context.Context, conversationID string) (*ConversationState, error)

	// writes the state's mutable fields and bumps Version, but only when the
	// persisted row still carries expectedVersion; returns false when stale
	UpdateIfVersion(ctx context.Context, state *ConversationState, expectedVersion int64) (bool, error)
}

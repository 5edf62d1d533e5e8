package orchestrator

import (
	"context"
	"time"

	"codeberg.org/parley/server/internal/anonquota"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/optimizer"
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/tools"
	"codeberg.org/parley/server/parley/chats"
	"codeberg.org/parley/server/parley/conversations"
	"codeberg.org/parley/server/parley/users"
)

// user lookup for authenticated callers
type UserFinder interface {
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

// chat and message persistence
type ChatStore interface {
	GetChatByID(ctx context.Context, chatID string) (*chats.Chat, error)
	SaveChat(ctx context.Context, req *chats.CreateChatRequest) (*chats.Chat, error)
	SaveMessage(ctx context.Context, req *chats.SaveMessageRequest) error
	GetThreadUpToMessage(ctx context.Context, chatID, messageID string) ([]chats.Message, error)
}

// credit holds for authenticated callers
type CreditLedger interface {
	Reserve(ctx context.Context, userID string, amount, baseCost int) (*credits.Reservation, error)
	Finalize(ctx context.Context, res *credits.Reservation, actualCost int) error
	Release(ctx context.Context, res *credits.Reservation) error
}

// message quota for anonymous callers
type AnonLimiter interface {
	CheckAndConsume(ctx context.Context, sessionKey string) (*anonquota.Result, error)
	Refund(ctx context.Context, sessionKey string, amount int) error
}

// provider chaining state per conversation
type ConversationManager interface {
	GetOrCreate(ctx context.Context, conversationID, userID string) (*conversations.ConversationState, error)
	UpdateWithResponse(ctx context.Context, conversationID string, update conversations.TurnUpdate) (*conversations.ConversationState, error)
	OptimizeContext(ctx context.Context, conversationID string, metrics optimizer.Metrics) (*optimizer.Decision, error)
}

// asynchronous chat titling, fired after the first successful turn
type Titler interface {
	GenerateAsync(chatID, firstMessage string)
}

// tunable limits for a single turn
type Config struct {
	// credits held per turn; covers the base cost plus the usual tool
	// surcharge. Tools dearer than the remainder need a bigger hold and
	// are rejected at resolution time.
	ReserveAmount int

	// permanent model cost per turn, in credits
	BaseCost int

	// maximum estimated tokens accepted for an inbound message
	TokenCeiling int

	// how many recent thread messages are sent on an unchained turn
	ThreadWindow int

	// context optimization runs every this many turns; zero disables it
	OptimizeEveryTurns int

	// hard ceiling on the provider call
	ProviderTimeout time.Duration
}

// returns the production limits
func DefaultConfig() Config {
	return Config{
		ReserveAmount:      8,
		BaseCost:           1,
		TokenCeiling:       8000,
		ThreadWindow:       20,
		OptimizeEveryTurns: 8,
		ProviderTimeout:    3 * time.Minute,
	}
}

// drives one chat turn end to end: identity, accounting, thread assembly,
// the provider call, and the compensating cleanup when anything fails after
// resources were taken.
type Orchestrator struct {
	users         UserFinder
	chats         ChatStore
	ledger        CreditLedger
	quota         AnonLimiter
	conversations ConversationManager
	provider      provider.Client
	titler        Titler
	catalog       []tools.Tool
	cfg           Config
}

// one inbound chat turn
type TurnRequest struct {
	ChatID          string  `json:"chat_id"`
	MessageID       string  `json:"message_id"`
	Content         string  `json:"content"`
	ParentMessageID *string `json:"parent_message_id,omitempty"`
	Model           string  `json:"model"`
	Tool            string  `json:"tool,omitempty"`
}

// the completed turn returned to the caller
type TurnResult struct {
	Message            *chats.Message `json:"message"`
	ResponseID         string         `json:"response_id"`
	Model              string         `json:"model"`
	Usage              provider.Usage `json:"usage"`
	CreditsCharged     int            `json:"credits_charged"`
	AnonymousRemaining int            `json:"anonymous_remaining,omitempty"`
	ChatCreated        bool           `json:"chat_created,omitempty"`
}

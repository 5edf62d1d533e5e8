package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/logger"
	"codeberg.org/parley/server/internal/optimizer"
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/tokens"
	"codeberg.org/parley/server/internal/tools"
	"codeberg.org/parley/server/parley/chats"
	"codeberg.org/parley/server/parley/conversations"
	"codeberg.org/parley/server/parley/users"
)

func New(
	userFinder UserFinder,
	chatStore ChatStore,
	ledger CreditLedger,
	quota AnonLimiter,
	convos ConversationManager,
	client provider.Client,
	catalog []tools.Tool,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		users:         userFinder,
		chats:         chatStore,
		ledger:        ledger,
		quota:         quota,
		conversations: convos,
		provider:      client,
		catalog:       catalog,
		cfg:           cfg,
	}
}

// sets the async chat titler
func (o *Orchestrator) SetTitler(t Titler) {
	o.titler = t
}

// runs one chat turn. Failures before any credit or quota was taken
// propagate directly; failures after always run the compensating release
// or refund first, then propagate.
func (o *Orchestrator) Turn(ctx context.Context, caller auth.Identity, req TurnRequest) (*TurnResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var user *users.User
	tier := ""

	if caller.Authenticated() {
		var err error
		user, err = o.users.FindByID(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("caller lookup failed: %w", err)
		}
		tier = user.Tier
	}

	known, allowed := modelAllowed(req.Model, tier)
	if !known {
		return nil, fmt.Errorf("%w: %s", provider.ErrModelNotFound, req.Model)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrModelNotAllowed, req.Model)
	}

	// enforced before any reservation or quota decrement so an oversized
	// message can never be charged
	if tokens.EstimateText(req.Content) > o.cfg.TokenCeiling {
		return nil, fmt.Errorf("%w (limit %d tokens)", ErrInputTooLarge, o.cfg.TokenCeiling)
	}

	chat, chatCreated, err := o.ensureChat(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	// idempotent by message id: a retry after a failed assistant turn finds
	// the user message already saved and skips it
	err = o.chats.SaveMessage(ctx, &chats.SaveMessageRequest{
		ID:       req.MessageID,
		ChatID:   chat.ID,
		ParentID: req.ParentMessageID,
		Role:     chats.RoleUser,
		Content:  req.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save inbound message: %w", err)
	}

	var reservation *credits.Reservation
	anonRemaining := 0

	if caller.Authenticated() {
		reservation, err = o.ledger.Reserve(ctx, user.ID, o.cfg.ReserveAmount, o.cfg.BaseCost)
		if err != nil {
			return nil, err
		}
	} else {
		result, err := o.quota.CheckAndConsume(ctx, caller.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		if !result.Allowed {
			return nil, ErrRateLimited
		}
		anonRemaining = result.Remaining
	}

	// from here on, every exit that is not a settled success runs the
	// compensating cleanup. Cleanup survives request cancellation and is
	// idempotent against the success path.
	settled := false
	defer func() {
		if !settled {
			o.compensate(context.WithoutCancel(ctx), caller, reservation)
		}
	}()

	budget := 0
	if reservation != nil {
		budget = reservation.Budget
	}

	active, err := tools.Resolve(o.catalog, req.Tool, budget)
	if err != nil {
		return nil, err
	}

	thread, err := o.chats.GetThreadUpToMessage(ctx, chat.ID, req.MessageID)
	if err != nil {
		return nil, fmt.Errorf("thread reconstruction failed: %w", err)
	}

	ownerKey := caller.UserID
	if ownerKey == "" {
		ownerKey = caller.SessionKey
	}

	state, err := o.conversations.GetOrCreate(ctx, chat.ID, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("conversation state load failed: %w", err)
	}

	fragment := conversations.ContinueConversation(state.PreviousResponseID, req.Content)

	// a chained turn sends only the new message; the provider holds the
	// earlier context server-side. An unchained turn replays the recent
	// window of the reconstructed thread.
	var input []provider.InputMessage
	if fragment.PreviousResponseID != nil {
		input = []provider.InputMessage{{Role: chats.RoleUser, Content: fragment.Input}}
	} else {
		input = buildInput(thread, o.cfg.ThreadWindow)
	}

	providerCtx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
	defer cancel()

	resp, err := o.provider.CreateResponse(providerCtx, provider.ResponseRequest{
		Model:              req.Model,
		Input:              input,
		PreviousResponseID: fragment.PreviousResponseID,
		Tools:              toolSpecs(active),
		Store:              true,
		Metadata:           map[string]string{"chat_id": chat.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}

	assistant := &chats.Message{
		ID:        uuid.New().String(),
		ChatID:    chat.ID,
		ParentID:  &req.MessageID,
		Role:      chats.RoleAssistant,
		Content:   resp.OutputText,
		CreatedAt: time.Now(),
	}

	err = o.chats.SaveMessage(ctx, &chats.SaveMessageRequest{
		ID:       assistant.ID,
		ChatID:   assistant.ChatID,
		ParentID: assistant.ParentID,
		Role:     assistant.Role,
		Content:  assistant.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	actualCost := 0
	if reservation != nil {
		actualCost = o.cfg.BaseCost + toolCost(o.catalog, req.Tool)

		if err := o.ledger.Finalize(context.WithoutCancel(ctx), reservation, actualCost); err != nil {
			// the turn already succeeded for the caller; a billing failure
			// is an operational incident, not a user-facing error
			logger.ErrorErr(err, "credit finalize failed", "user_id", user.ID, "cost", actualCost)
		}
	}
	settled = true

	updated, err := o.conversations.UpdateWithResponse(ctx, chat.ID, conversations.TurnUpdate{
		ResponseID: resp.ID,
		Tokens:     usageTokens(resp, req.Content),
	})
	if err != nil {
		// a concurrent turn on the same conversation won the version race;
		// the losing chain update is dropped rather than failing a billed turn
		logger.Warn("conversation update rejected", "chat_id", chat.ID, "error", err.Error())
	} else if o.cfg.OptimizeEveryTurns > 0 && updated.TurnCount%o.cfg.OptimizeEveryTurns == 0 {
		o.optimizeContext(ctx, chat.ID, updated)
	}

	if chatCreated && o.titler != nil {
		o.titler.GenerateAsync(chat.ID, req.Content)
	}

	return &TurnResult{
		Message:            assistant,
		ResponseID:         resp.ID,
		Model:              resp.Model,
		Usage:              resp.Usage,
		CreditsCharged:     actualCost,
		AnonymousRemaining: anonRemaining,
		ChatCreated:        chatCreated,
	}, nil
}

// runs periodic context bookkeeping; a missing optimizer or a lost version
// race only costs this round of optimization
func (o *Orchestrator) optimizeContext(ctx context.Context, conversationID string, state *conversations.ConversationState) {
	_, err := o.conversations.OptimizeContext(ctx, conversationID, optimizer.Metrics{
		TurnCount:   state.TurnCount,
		TotalTokens: state.TotalTokens,
	})
	if err != nil && !errors.Is(err, conversations.ErrOptimizerNotConfigured) {
		logger.Warn("context optimization failed", "conversation_id", conversationID, "error", err.Error())
	}
}

// loads the chat and verifies ownership, creating it on first contact
func (o *Orchestrator) ensureChat(ctx context.Context, caller auth.Identity, req TurnRequest) (*chats.Chat, bool, error) {
	chat, err := o.chats.GetChatByID(ctx, req.ChatID)
	if err == nil {
		if caller.Authenticated() {
			if chat.UserID != caller.UserID {
				return nil, false, ErrUnauthorized
			}
		} else if chat.SessionKey != caller.SessionKey {
			return nil, false, ErrUnauthorized
		}

		return chat, false, nil
	}

	if !errors.Is(err, chats.ErrChatNotFound) {
		return nil, false, fmt.Errorf("chat lookup failed: %w", err)
	}

	created, err := o.chats.SaveChat(ctx, &chats.CreateChatRequest{
		ID:         req.ChatID,
		UserID:     caller.UserID,
		SessionKey: caller.SessionKey,
		Title:      "New chat",
	})
	if err != nil {
		return nil, false, fmt.Errorf("chat creation failed: %w", err)
	}

	return created, true, nil
}

// returns whatever was taken in the accounting step. Release is idempotent,
// so racing a finalize that already went through is harmless.
func (o *Orchestrator) compensate(ctx context.Context, caller auth.Identity, reservation *credits.Reservation) {
	if reservation != nil {
		if err := o.ledger.Release(ctx, reservation); err != nil {
			logger.ErrorErr(err, "credit release failed", "user_id", reservation.UserID)
		}
		return
	}

	if caller.SessionKey != "" {
		if err := o.quota.Refund(ctx, caller.SessionKey, 1); err != nil {
			logger.ErrorErr(err, "quota refund failed", "session_key", caller.SessionKey)
		}
	}
}

func validate(req TurnRequest) error {
	switch {
	case req.ChatID == "":
		return fmt.Errorf("%w: chat_id required", ErrValidation)
	case req.MessageID == "":
		return fmt.Errorf("%w: message_id required", ErrValidation)
	case strings.TrimSpace(req.Content) == "":
		return fmt.Errorf("%w: message content required", ErrValidation)
	case req.Model == "":
		return fmt.Errorf("%w: model required", ErrValidation)
	}

	return nil
}

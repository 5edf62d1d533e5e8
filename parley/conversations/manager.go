package conversations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/parley/server/internal/optimizer"
)

// owns the provider response-id chain for every conversation. Each
// successful turn advances the chain by exactly one link; the version guard
// in the store serializes concurrent writers so the chain can never fork or
// skip.
type Manager struct {
	store     Store
	optimizer optimizer.Optimizer
}

// creates a manager without a context optimizer; OptimizeContext will fail
// until one is configured
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// creates a manager with a context optimizer collaborator
func NewManagerWithOptimizer(store Store, opt optimizer.Optimizer) *Manager {
	return &Manager{store: store, optimizer: opt}
}

// sets the optimizer collaborator
func (m *Manager) SetOptimizer(opt optimizer.Optimizer) {
	m.optimizer = opt
}

// initializes chaining state for a new conversation: no previous response,
// version zero
func (m *Manager) Create(ctx context.Context, conversationID, userID string) (*ConversationState, error) {
	state := &ConversationState{
		ConversationID: conversationID,
		UserID:         userID,
	}

	if err := m.store.Create(ctx, state); err != nil {
		return nil, err
	}

	return m.store.Get(ctx, conversationID)
}

// loads the conversation's current state
func (m *Manager) Get(ctx context.Context, conversationID string) (*ConversationState, error) {
	return m.store.Get(ctx, conversationID)
}

// loads state, creating it on the conversation's first turn. A concurrent
// creator losing the insert race falls back to reading the winner's row.
func (m *Manager) GetOrCreate(ctx context.Context, conversationID, userID string) (*ConversationState, error) {
	state, err := m.store.Get(ctx, conversationID)
	if err == nil {
		return state, nil
	}

	if !errors.Is(err, ErrConversationNotFound) {
		return nil, err
	}

	state, err = m.Create(ctx, conversationID, userID)
	if errors.Is(err, ErrConversationExists) {
		return m.store.Get(ctx, conversationID)
	}

	return state, err
}

// builds the chaining portion of the next provider request. Pure
// construction - the recorded state is not touched until the provider call
// succeeds.
func ContinueConversation(previousResponseID *string, input string) RequestFragment {
	return RequestFragment{
		PreviousResponseID: previousResponseID,
		Input:              input,
	}
}

// records a successful provider response against the conversation: the new
// response id becomes the chain head, the turn count and token total grow,
// and the version advances by one. Fails with ErrVersionConflict when a
// concurrent turn updated the row first - the loser must not be applied, or
// the chain pointer would be silently clobbered.
func (m *Manager) UpdateWithResponse(ctx context.Context, conversationID string, update TurnUpdate) (*ConversationState, error) {
	state, err := m.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	loadedVersion := state.Version

	responseID := update.ResponseID
	state.PreviousResponseID = &responseID
	state.TurnCount++
	state.TotalTokens += update.Tokens
	state.LastActivity = time.Now()

	applied, err := m.store.UpdateIfVersion(ctx, state, loadedVersion)
	if err != nil {
		return nil, err
	}

	if !applied {
		return nil, fmt.Errorf("%w: conversation %s at version %d", ErrVersionConflict, conversationID, loadedVersion)
	}

	state.Version = loadedVersion + 1

	return state, nil
}

// asks the configured optimizer whether the conversation's history should be
// compacted and persists the resulting bookkeeping (relevance score, token
// reduction). Requires an optimizer collaborator.
func (m *Manager) OptimizeContext(ctx context.Context, conversationID string, metrics optimizer.Metrics) (*optimizer.Decision, error) {
	if m.optimizer == nil {
		return nil, ErrOptimizerNotConfigured
	}

	decision, err := m.optimizer.Optimize(ctx, metrics)
	if err != nil {
		return nil, fmt.Errorf("context optimization failed: %w", err)
	}

	state, err := m.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	loadedVersion := state.Version

	score := decision.RelevanceScore
	state.RelevanceScore = &score
	state.LastActivity = time.Now()

	if decision.ShouldTruncate && decision.TokensToRemove > 0 {
		state.TotalTokens -= decision.TokensToRemove
		if state.TotalTokens < 0 {
			state.TotalTokens = 0
		}
	}

	applied, err := m.store.UpdateIfVersion(ctx, state, loadedVersion)
	if err != nil {
		return nil, err
	}

	if !applied {
		return nil, fmt.Errorf("%w: conversation %s at version %d", ErrVersionConflict, conversationID, loadedVersion)
	}

	return decision, nil
}

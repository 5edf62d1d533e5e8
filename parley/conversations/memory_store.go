package conversations

import (
	"context"
	"sync"
	"time"
)

// implements Store in memory, mirroring the version-guard semantics of the
// Postgres store. Used in tests and single-instance development setups.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*ConversationState
}

// creates a new in-memory conversation state store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*ConversationState),
	}
}

func (s *MemoryStore) Create(_ context.Context, state *ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.states[state.ConversationID]; exists {
		return ErrConversationExists
	}

	now := time.Now()
	stored := *state
	stored.Version = 0
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.LastActivity = now

	s.states[state.ConversationID] = &stored

	return nil
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) (*ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[conversationID]
	if !exists {
		return nil, ErrConversationNotFound
	}

	copied := *state

	return &copied, nil
}

func (s *MemoryStore) UpdateIfVersion(_ context.Context, state *ConversationState, expectedVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.states[state.ConversationID]
	if !exists {
		return false, nil
	}

	if stored.Version != expectedVersion {
		return false, nil
	}

	stored.PreviousResponseID = state.PreviousResponseID
	stored.TurnCount = state.TurnCount
	stored.TotalTokens = state.TotalTokens
	stored.LastActivity = state.LastActivity
	stored.RelevanceScore = state.RelevanceScore
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()

	return true, nil
}

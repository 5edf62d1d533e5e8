package conversations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/parley/server/internal/optimizer"
)

func TestCreate_InitialState(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	state, err := mgr.Create(context.Background(), "conv-1", "user-1")

	require.NoError(t, err)
	assert.Nil(t, state.PreviousResponseID)
	assert.Equal(t, int64(0), state.Version)
	assert.Equal(t, 0, state.TurnCount)
}

func TestGet_NotFound(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	_, err := mgr.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestGetOrCreate_ReturnsExisting(t *testing.T) {
	mgr := NewManager(NewMemoryStore())
	ctx := context.Background()

	created, err := mgr.Create(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	loaded, err := mgr.GetOrCreate(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.ConversationID, loaded.ConversationID)
}

func TestContinueConversation_PureConstruction(t *testing.T) {
	respID := "resp_A"

	fragment := ContinueConversation(&respID, "hello")

	require.NotNil(t, fragment.PreviousResponseID)
	assert.Equal(t, "resp_A", *fragment.PreviousResponseID)
	assert.Equal(t, "hello", fragment.Input)

	// first turn of a conversation chains from nothing
	first := ContinueConversation(nil, "hi")
	assert.Nil(t, first.PreviousResponseID)
}

func TestUpdateWithResponse_ChainsAcrossTurns(t *testing.T) {
	mgr := NewManager(NewMemoryStore())
	ctx := context.Background()

	_, err := mgr.Create(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	// turn 1 returns resp_A
	state, err := mgr.UpdateWithResponse(ctx, "conv-1", TurnUpdate{ResponseID: "resp_A", Tokens: 100})
	require.NoError(t, err)
	require.NotNil(t, state.PreviousResponseID)
	assert.Equal(t, "resp_A", *state.PreviousResponseID)
	assert.Equal(t, int64(1), state.Version)

	// turn 2 must chain from resp_A
	loaded, err := mgr.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "resp_A", *loaded.PreviousResponseID)

	state, err = mgr.UpdateWithResponse(ctx, "conv-1", TurnUpdate{ResponseID: "resp_B", Tokens: 150})
	require.NoError(t, err)
	assert.Equal(t, "resp_B", *state.PreviousResponseID)

	// version advanced by exactly 2 from creation
	final, err := mgr.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), final.Version)
	assert.Equal(t, 2, final.TurnCount)
	assert.Equal(t, int64(250), final.TotalTokens)
}

func TestUpdateWithResponse_NotFound(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	_, err := mgr.UpdateWithResponse(context.Background(), "missing", TurnUpdate{ResponseID: "resp_A"})

	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestUpdateWithResponse_StaleVersionRejected(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewManager(store)
	ctx := context.Background()

	_, err := mgr.Create(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	// simulate a writer that loaded at version 0 and raced another turn:
	// the other turn lands first
	_, err = mgr.UpdateWithResponse(ctx, "conv-1", TurnUpdate{ResponseID: "resp_A", Tokens: 10})
	require.NoError(t, err)

	stale := &ConversationState{ConversationID: "conv-1"}
	applied, err := store.UpdateIfVersion(ctx, stale, 0)
	require.NoError(t, err)
	assert.False(t, applied, "stale write must not be applied")
}

func TestUpdateWithResponse_ConcurrentSameBase(t *testing.T) {
	// two concurrent updates from the same base version: exactly one
	// success and one version conflict
	for i := 0; i < 20; i++ {
		mgr := NewManager(NewMemoryStore())
		ctx := context.Background()

		_, err := mgr.Create(ctx, "conv-1", "user-1")
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]error, 2)

		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(j int, responseID string) {
				defer wg.Done()
				_, results[j] = mgr.UpdateWithResponse(ctx, "conv-1", TurnUpdate{ResponseID: responseID})
			}(j, "resp_"+string(rune('A'+j)))
		}

		wg.Wait()

		succeeded, conflicted := 0, 0
		for _, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrVersionConflict):
				conflicted++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, conflicted)

		state, err := mgr.Get(ctx, "conv-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), state.Version)
	}
}

func TestOptimizeContext_RequiresOptimizer(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	_, err := mgr.OptimizeContext(context.Background(), "conv-1", optimizer.Metrics{})

	assert.ErrorIs(t, err, ErrOptimizerNotConfigured)
}

func TestOptimizeContext_PersistsBookkeeping(t *testing.T) {
	mgr := NewManagerWithOptimizer(NewMemoryStore(), optimizer.NewHeuristicWithThresholds(5, 1000))
	ctx := context.Background()

	_, err := mgr.Create(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		_, err = mgr.UpdateWithResponse(ctx, "conv-1", TurnUpdate{ResponseID: "resp", Tokens: 100})
		require.NoError(t, err)
	}

	decision, err := mgr.OptimizeContext(ctx, "conv-1", optimizer.Metrics{TurnCount: 6, TotalTokens: 600})
	require.NoError(t, err)
	assert.True(t, decision.ShouldTruncate)

	state, err := mgr.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, state.RelevanceScore)
	assert.Equal(t, int64(300), state.TotalTokens, "truncation bookkeeping applied")
}

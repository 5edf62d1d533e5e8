package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristic_BelowThresholds(t *testing.T) {
	h := NewHeuristicWithThresholds(10, 1000)

	decision, err := h.Optimize(context.Background(), Metrics{TurnCount: 3, TotalTokens: 200})

	require.NoError(t, err)
	assert.False(t, decision.ShouldTruncate)
	assert.InDelta(t, 0.8, decision.RelevanceScore, 0.001)
}

func TestHeuristic_TurnThresholdReached(t *testing.T) {
	h := NewHeuristicWithThresholds(10, 1000)

	decision, err := h.Optimize(context.Background(), Metrics{TurnCount: 10, TotalTokens: 100})

	require.NoError(t, err)
	assert.True(t, decision.ShouldTruncate)
	assert.Equal(t, int64(50), decision.TokensToRemove)
}

func TestHeuristic_TokenThresholdReached(t *testing.T) {
	h := NewHeuristicWithThresholds(100, 1000)

	decision, err := h.Optimize(context.Background(), Metrics{TurnCount: 2, TotalTokens: 1500})

	require.NoError(t, err)
	assert.True(t, decision.ShouldTruncate)
	assert.Equal(t, float64(0), decision.RelevanceScore)
	assert.Equal(t, int64(750), decision.TokensToRemove)
}

func TestNoop_NeverTruncates(t *testing.T) {
	n := NewNoop()

	decision, err := n.Optimize(context.Background(), Metrics{TurnCount: 9999, TotalTokens: 1 << 30})

	require.NoError(t, err)
	assert.False(t, decision.ShouldTruncate)
	assert.Equal(t, 1.0, decision.RelevanceScore)
}

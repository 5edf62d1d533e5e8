package optimizer

import "context"

const (
	defaultTurnThreshold  = 40
	defaultTokenThreshold = 60000

	// fraction of accumulated tokens recommended for removal when truncating
	truncateFraction = 0.5
)

// threshold-driven optimizer. Recommends truncation once a conversation
// exceeds a turn count or token total, and scores relevance by how far the
// conversation sits below the token threshold.
type Heuristic struct {
	turnThreshold  int
	tokenThreshold int64
}

func NewHeuristic() *Heuristic {
	return &Heuristic{
		turnThreshold:  defaultTurnThreshold,
		tokenThreshold: defaultTokenThreshold,
	}
}

// creates a heuristic optimizer with explicit thresholds
func NewHeuristicWithThresholds(turns int, tokens int64) *Heuristic {
	return &Heuristic{
		turnThreshold:  turns,
		tokenThreshold: tokens,
	}
}

func (h *Heuristic) Optimize(_ context.Context, metrics Metrics) (*Decision, error) {
	score := 1.0
	if h.tokenThreshold > 0 && metrics.TotalTokens > 0 {
		score = 1.0 - float64(metrics.TotalTokens)/float64(h.tokenThreshold)
		if score < 0 {
			score = 0
		}
	}

	decision := &Decision{
		ShouldTruncate: false,
		RelevanceScore: score,
	}

	if metrics.TurnCount >= h.turnThreshold || metrics.TotalTokens >= h.tokenThreshold {
		decision.ShouldTruncate = true
		decision.TokensToRemove = int64(float64(metrics.TotalTokens) * truncateFraction)
	}

	return decision, nil
}

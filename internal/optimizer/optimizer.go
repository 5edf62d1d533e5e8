package optimizer

import "context"

// conversation measurements handed to an optimizer when deciding whether
// older turns should be summarized or truncated
type Metrics struct {
	TurnCount   int   `json:"turn_count"`
	TotalTokens int64 `json:"total_tokens"`
}

// the optimizer's recommendation for a conversation
type Decision struct {
	ShouldTruncate     bool    `json:"should_truncate"`
	RelevanceScore     float64 `json:"relevance_score"`
	RecommendedSummary string  `json:"recommended_summary,omitempty"`
	TokensToRemove     int64   `json:"tokens_to_remove,omitempty"`
}

// decides whether a conversation's history should be compacted. Implementations
// may be a no-op, a threshold heuristic, or a real summarization model - the
// state manager only depends on this interface.
type Optimizer interface {
	Optimize(ctx context.Context, metrics Metrics) (*Decision, error)
}

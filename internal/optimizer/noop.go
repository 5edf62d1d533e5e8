package optimizer

import "context"

// optimizer that never recommends truncation
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Optimize(_ context.Context, _ Metrics) (*Decision, error) {
	return &Decision{
		ShouldTruncate: false,
		RelevanceScore: 1.0,
	}, nil
}

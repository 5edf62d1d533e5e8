package tools

import "fmt"

// describes an optional tool the model may invoke during a turn,
// with its declared credit cost
type Tool struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// raised when an explicitly requested tool does not fit the remaining budget
type BudgetExceededError struct {
	Tool   string
	Cost   int
	Budget int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("tool %q costs %d credits but only %d remain in the budget", e.Tool, e.Cost, e.Budget)
}

// returns the subset of candidate tools whose cost fits within the
// remaining budget. Pure function, does not modify the input slice.
func Affordable(candidates []Tool, budget int) []Tool {
	affordable := make([]Tool, 0, len(candidates))

	for _, tool := range candidates {
		if tool.Cost <= budget {
			affordable = append(affordable, tool)
		}
	}

	return affordable
}

// computes the active tool set for a request. When requested is empty the
// result is simply the affordable subset. When the caller explicitly asked
// for a tool, that tool must be present and affordable - an unaffordable
// request fails with a BudgetExceededError naming the tool rather than
// silently downgrading to a different one.
func Resolve(candidates []Tool, requested string, budget int) ([]Tool, error) {
	affordable := Affordable(candidates, budget)

	if requested == "" {
		return affordable, nil
	}

	for _, tool := range affordable {
		if tool.Name == requested {
			return []Tool{tool}, nil
		}
	}

	// distinguish unknown tools from unaffordable ones for the error message
	for _, tool := range candidates {
		if tool.Name == requested {
			return nil, &BudgetExceededError{Tool: tool.Name, Cost: tool.Cost, Budget: budget}
		}
	}

	return nil, fmt.Errorf("unknown tool %q", requested)
}

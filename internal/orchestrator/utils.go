package orchestrator

import (
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/tokens"
	"codeberg.org/parley/server/internal/tools"
	"codeberg.org/parley/server/parley/chats"
)

// minimum tier required per model; the empty tier is open to anonymous
// callers as well
var modelTiers = map[string]string{
	"gpt-4o-mini": "",
	"gpt-4o":      "free",
	"o3":          "pro",
}

var tierRank = map[string]int{
	"":     0,
	"free": 1,
	"pro":  2,
}

// reports whether the model exists and whether the caller's tier may use it.
// Anonymous callers pass the empty tier.
func modelAllowed(model, tier string) (known, allowed bool) {
	required, ok := modelTiers[model]
	if !ok {
		return false, false
	}

	return true, tierRank[tier] >= tierRank[required]
}

// looks up the declared cost of a tool by name; zero when absent
func toolCost(catalog []tools.Tool, name string) int {
	for _, tool := range catalog {
		if tool.Name == name {
			return tool.Cost
		}
	}

	return 0
}

func toolSpecs(active []tools.Tool) []provider.ToolSpec {
	if len(active) == 0 {
		return nil
	}

	specs := make([]provider.ToolSpec, 0, len(active))
	for _, tool := range active {
		specs = append(specs, provider.ToolSpec{Type: tool.Name})
	}

	return specs
}

// converts the recent slice of a thread into provider input, dropping
// reasoning traces the provider will not accept back
func buildInput(thread []chats.Message, window int) []provider.InputMessage {
	if len(thread) > window {
		thread = thread[len(thread)-window:]
	}

	input := make([]provider.InputMessage, 0, len(thread))
	for _, msg := range thread {
		input = append(input, provider.InputMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return input
}

// falls back to a length-based estimate when the provider reports no usage
func usageTokens(resp *provider.Response, inbound string) int64 {
	if resp.Usage.TotalTokens > 0 {
		return resp.Usage.TotalTokens
	}

	return int64(tokens.EstimateText(inbound) + tokens.EstimateText(resp.OutputText))
}

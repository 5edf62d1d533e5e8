package tokens

// rough token accounting used for the input ceiling and for usage fallback
// when the provider does not report token counts. Uses the common
// approximation of ~4 characters per token plus a small per-message overhead.

const (
	charsPerToken      = 4
	perMessageOverhead = 4
	requestOverhead    = 3
)

// estimates the token count of a single piece of text
func EstimateText(text string) int {
	if text == "" {
		return 0
	}

	return len(text)/charsPerToken + 1
}

// estimates the total token count of a message thread
func EstimateThread(contents []string) int {
	total := requestOverhead

	for _, content := range contents {
		total += EstimateText(content) + perMessageOverhead
	}

	return total
}

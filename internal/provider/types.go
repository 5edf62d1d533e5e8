package provider

import "context"

// a single input message for the provider
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// an optional tool declared on the request
type ToolSpec struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// one provider invocation. PreviousResponseID chains this turn onto the
// conversation's server-side context.
type ResponseRequest struct {
	Model              string
	Input              []InputMessage
	PreviousResponseID *string
	Tools              []ToolSpec
	Store              bool
	Metadata           map[string]string
}

// token usage reported by the provider
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// a provider annotation attached to the output (citations, file references)
type Annotation struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// the provider's answer to one turn
type Response struct {
	ID          string       `json:"id"`
	Model       string       `json:"model"`
	OutputText  string       `json:"output_text"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Usage       Usage        `json:"usage"`
}

// the AI provider consumed by the orchestrator
type Client interface {
	CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error)
}

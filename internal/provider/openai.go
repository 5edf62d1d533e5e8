package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	openaiResponsesURL = "https://api.openai.com/v1/responses"
	defaultModel       = "gpt-4o"
)

// shared HTTP client for OpenAI API calls
// reuses connection pool and timeout configuration
var openaiHTTPClient = &http.Client{
	Timeout: 5 * time.Minute, // provider calls can run long
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for OpenAI API calls (50 requests/second with burst capacity of 10)
var openaiRateLimiter = rate.NewLimiter(50, 10)

type responsesRequest struct {
	Model              string            `json:"model"`
	Input              []InputMessage    `json:"input"`
	PreviousResponseID *string           `json:"previous_response_id,omitempty"`
	Tools              []ToolSpec        `json:"tools,omitempty"`
	Store              bool              `json:"store"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type responsesResponse struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type        string       `json:"type"`
			Text        string       `json:"text"`
			Annotations []Annotation `json:"annotations,omitempty"`
		} `json:"content"`
	} `json:"output"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
		TotalTokens  int64 `json:"total_tokens"`
	} `json:"usage"`
}

type OpenAIConfig struct {
	APIKey string
	Model  string // default model when the request doesn't name one
}

// talks to the OpenAI Responses API. Conversation chaining is server-side:
// the request carries the previous turn's response id and Store=true so the
// provider reconstructs context itself.
type OpenAIClient struct {
	config     OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	if config.Model == "" {
		config.Model = defaultModel
	}

	return &OpenAIClient{
		config:     config,
		httpClient: openaiHTTPClient, // shared client with proper timeouts and connection pooling
	}
}

func (c *OpenAIClient) Model() string {
	return c.config.Model
}

func (c *OpenAIClient) CreateResponse(ctx context.Context, req ResponseRequest) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	reqBody := responsesRequest{
		Model:              model,
		Input:              req.Input,
		PreviousResponseID: req.PreviousResponseID,
		Tools:              req.Tools,
		Store:              req.Store,
		Metadata:           req.Metadata,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openaiResponsesURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	// rate limiting
	if err := openaiRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck

		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		case http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, string(body))
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
		}

		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	text, annotations := collectOutput(apiResp)
	if text == "" {
		return nil, fmt.Errorf("no output in response")
	}

	return &Response{
		ID:          apiResp.ID,
		Model:       apiResp.Model,
		OutputText:  text,
		Annotations: annotations,
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
			TotalTokens:  apiResp.Usage.TotalTokens,
		},
	}, nil
}

// flattens the output blocks into a single text plus annotation list
func collectOutput(apiResp responsesResponse) (string, []Annotation) {
	var builder strings.Builder
	var annotations []Annotation

	for _, item := range apiResp.Output {
		if item.Type != "message" {
			continue
		}

		for _, content := range item.Content {
			if content.Type != "output_text" {
				continue
			}

			builder.WriteString(content.Text)
			annotations = append(annotations, content.Annotations...)
		}
	}

	return strings.TrimSpace(builder.String()), annotations
}

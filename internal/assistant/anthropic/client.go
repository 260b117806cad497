// Package anthropic implements the assistant provider client for the
// Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/assistant"
)

const (
	// ProviderName identifies this assistant provider.
	ProviderName = "anthropic"

	// DefaultBaseURL is the Anthropic API base URL.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-latest"

	// apiVersion is the required Anthropic API version header value.
	apiVersion = "2023-06-01"
)

const systemPrompt = "You are a careful medical information assistant. " +
	"Provide general health information, never a definitive diagnosis or " +
	"prescription change, and advise consulting a healthcare professional " +
	"for personal medical decisions."

// ClientConfig holds configuration for the Anthropic client.
type ClientConfig struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// Model is the model identifier (optional).
	Model string

	// Kind is this provider's role in the fallback chain.
	Kind assistant.Kind

	// Timeout bounds each generation call. Default: 30s.
	Timeout time.Duration

	// HealthTimeout bounds each health probe. Default: 5s.
	HealthTimeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Anthropic messages client implementing assistant.Client.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	kind          assistant.Kind
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        zerolog.Logger
}

// NewClient creates a new Anthropic client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout == 0 {
		healthTimeout = 5 * time.Second
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       baseURL,
		model:         model,
		kind:          cfg.Kind,
		httpClient:    &http.Client{Timeout: timeout},
		healthTimeout: healthTimeout,
		logger:        cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Kind returns the provider's fallback role.
func (c *Client) Kind() assistant.Kind {
	return c.kind
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate sends one messages request and normalizes the response.
func (c *Client) Generate(ctx context.Context, req assistant.GenerationRequest) (*assistant.GenerationResult, error) {
	payload := messagesRequest{
		Model:     c.model,
		System:    systemPrompt,
		MaxTokens: 1024,
		Messages: []message{
			{Role: "user", Content: userContent(req)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, assistant.NewProviderError(ProviderName,
			fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, detail))
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("decoding response: %w", err))
	}

	text := ""
	for _, block := range mr.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("empty completion"))
	}

	confidence := 0.9
	if mr.StopReason != "end_turn" {
		confidence = 0.6
	}

	return &assistant.GenerationResult{
		Text:       text,
		Provider:   ProviderName,
		Kind:       c.kind,
		Model:      c.model,
		Confidence: confidence,
		Tokens: assistant.TokenUsage{
			Prompt:     mr.Usage.InputTokens,
			Completion: mr.Usage.OutputTokens,
		},
		Metadata: map[string]string{
			"stopReason": mr.StopReason,
		},
	}, nil
}

// HealthCheck issues a minimal one-token message with a short timeout.
// Failures are reported as false, never as an error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	payload := messagesRequest{
		Model:     c.model,
		MaxTokens: 1,
		Messages:  []message{{Role: "user", Content: "ping"}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(probeCtx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("anthropic health check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func userContent(req assistant.GenerationRequest) string {
	if history, ok := req.Context["history"]; ok && history != "" {
		return "Previous conversation:\n" + history + "\n\nCurrent question: " + req.Message
	}
	return req.Message
}

// Anthropic API response structures.

type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

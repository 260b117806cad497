// Package openai implements the assistant provider client for the OpenAI
// Chat Completions API.
package openai

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
	ProviderName = "openai"

	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
)

// systemPrompt frames every consultation. Prompt construction is internal to
// the client; callers only see text in, text out.
const systemPrompt = "You are a careful medical information assistant. " +
	"Provide general health information, never a definitive diagnosis or " +
	"prescription change, and advise consulting a healthcare professional " +
	"for personal medical decisions."

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the OpenAI API).
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

// Client is an OpenAI chat-completions client implementing assistant.Client.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	kind          assistant.Kind
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        zerolog.Logger
}

// NewClient creates a new OpenAI client.
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

// Generate sends one chat-completion request and normalizes the response.
func (c *Client) Generate(ctx context.Context, req assistant.GenerationRequest) (*assistant.GenerationResult, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserContent(req)},
		},
		Temperature: 0.3,
		MaxTokens:   1024,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("decoding response: %w", err))
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("empty completion"))
	}

	choice := cr.Choices[0]
	return &assistant.GenerationResult{
		Text:       choice.Message.Content,
		Provider:   ProviderName,
		Kind:       c.kind,
		Model:      c.model,
		Confidence: confidenceFor(choice.FinishReason),
		Tokens: assistant.TokenUsage{
			Prompt:     cr.Usage.PromptTokens,
			Completion: cr.Usage.CompletionTokens,
		},
		Metadata: map[string]string{
			"finishReason": choice.FinishReason,
		},
	}, nil
}

// HealthCheck probes the models endpoint with a short timeout. Failures are
// reported as false, never as an error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/models", http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("openai health check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// buildUserContent folds optional conversation context into the user message.
func buildUserContent(req assistant.GenerationRequest) string {
	if len(req.Context) == 0 {
		return req.Message
	}
	content := req.Message
	if history, ok := req.Context["history"]; ok && history != "" {
		content = "Previous conversation:\n" + history + "\n\nCurrent question: " + req.Message
	}
	return content
}

// confidenceFor maps finish reasons to a coarse confidence score.
func confidenceFor(finishReason string) float64 {
	switch finishReason {
	case "stop":
		return 0.9
	case "length":
		return 0.6
	default:
		return 0.5
	}
}

// OpenAI API response structures.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

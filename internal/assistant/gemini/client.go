// Package gemini implements the assistant provider client for the Google
// Gemini generateContent API.
package gemini

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
	ProviderName = "gemini"

	// DefaultBaseURL is the Gemini API base URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
)

const systemPrompt = "You are a careful medical information assistant. " +
	"Provide general health information, never a definitive diagnosis or " +
	"prescription change, and advise consulting a healthcare professional " +
	"for personal medical decisions."

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Gemini API key (required).
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

// Client is a Gemini generateContent client implementing assistant.Client.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	kind          assistant.Kind
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        zerolog.Logger
}

// NewClient creates a new Gemini client.
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

// Generate sends one generateContent request and normalizes the response.
func (c *Client) Generate(ctx context.Context, req assistant.GenerationRequest) (*assistant.GenerationResult, error) {
	text := req.Message
	if history, ok := req.Context["history"]; ok && history != "" {
		text = "Previous conversation:\n" + history + "\n\nCurrent question: " + req.Message
	}

	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			MaxOutputTokens: 1024,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("decoding response: %w", err))
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("empty completion"))
	}

	candidate := gr.Candidates[0]
	out := ""
	for _, p := range candidate.Content.Parts {
		out += p.Text
	}
	if out == "" {
		return nil, assistant.NewProviderError(ProviderName, fmt.Errorf("empty completion"))
	}

	confidence := 0.9
	if candidate.FinishReason != "STOP" {
		confidence = 0.6
	}

	return &assistant.GenerationResult{
		Text:       out,
		Provider:   ProviderName,
		Kind:       c.kind,
		Model:      c.model,
		Confidence: confidence,
		Tokens: assistant.TokenUsage{
			Prompt:     gr.UsageMetadata.PromptTokenCount,
			Completion: gr.UsageMetadata.CandidatesTokenCount,
		},
		Metadata: map[string]string{
			"finishReason": candidate.FinishReason,
		},
	}, nil
}

// HealthCheck probes the models listing with a short timeout. Failures are
// reported as false, never as an error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/models?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("gemini health check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Gemini API request/response structures.

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

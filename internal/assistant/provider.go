// Package assistant provides the AI provider orchestration layer: a set of
// interchangeable generation backends, per-provider health tracking, and a
// fallback/retry protocol that routes each consultation request to the best
// currently available backend.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind identifies a provider's configured role in the fallback chain.
type Kind string

const (
	KindPrimary   Kind = "primary"
	KindSecondary Kind = "secondary"
	KindTertiary  Kind = "tertiary"
)

// Orchestration errors surfaced to callers. Per-attempt provider errors never
// cross the orchestrator boundary; only these two terminal kinds do.
var (
	// ErrAllProvidersUnavailable means no provider was eligible at call time.
	ErrAllProvidersUnavailable = errors.New("no assistant providers available")

	// ErrAllProvidersFailed means at least one provider was eligible and
	// attempted, but none succeeded within its retry budget.
	ErrAllProvidersFailed = errors.New("all assistant providers failed")
)

// ProviderError is a single-attempt failure from one backend (network error,
// non-success status, empty body, timeout). It is recovered by the retry loop
// and recorded in the provider's health tracker, never returned to callers.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError wraps a backend failure with the provider's name.
func NewProviderError(provider string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Cause: cause}
}

// GenerationRequest is the per-call input to the orchestrator.
type GenerationRequest struct {
	// Message is the user's text. Must be non-empty.
	Message string

	// Context carries optional conversation context forwarded to the backend
	// (recent history, user profile hints).
	Context map[string]string

	// MaxRetries is the per-provider retry budget. Zero means the
	// orchestrator default (3).
	MaxRetries int
}

// TokenUsage reports token counts when the backend provides them.
type TokenUsage struct {
	Prompt     int `json:"promptTokens"`
	Completion int `json:"completionTokens"`
}

// GenerationResult is a successful response from one backend.
type GenerationResult struct {
	// Text is the generated response.
	Text string

	// Provider is the name of the backend that produced the result.
	Provider string

	// Kind is the producing provider's configured role.
	Kind Kind

	// Model is the backend model identifier used.
	Model string

	// Confidence is the provider's self-reported confidence in [0,1].
	Confidence float64

	// Latency is the duration of the successful attempt.
	Latency time.Duration

	// Tokens reports usage when available.
	Tokens TokenUsage

	// Metadata carries provider-specific diagnostic fields.
	Metadata map[string]string
}

// Client is implemented once per AI backend. Implementations own their wire
// format, credentials, and per-call timeout; callers never see prompt
// construction.
type Client interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// Kind returns the provider's configured fallback role.
	Kind() Kind

	// Model returns the configured model identifier.
	Model() string

	// Generate issues one bounded outbound call and returns the normalized
	// result. Failures are returned as *ProviderError.
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)

	// HealthCheck is a lightweight probe with a short timeout. It never
	// returns an error; failures report false.
	HealthCheck(ctx context.Context) bool
}

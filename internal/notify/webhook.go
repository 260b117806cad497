package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/resilience"
)

// WebhookNotifier posts state change events as JSON to an operator
// endpoint. Delivery goes through the resilient HTTP client so a flaky
// receiver is retried and a dead one trips the circuit breaker instead
// of stalling the prober loop.
type WebhookNotifier struct {
	url    string
	client *resilience.Client
	logger zerolog.Logger
}

// WebhookConfig holds configuration for the webhook notifier.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewWebhookNotifier creates a webhook notifier for the given endpoint.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	clientCfg := resilience.DefaultClientConfig("webhook")
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}

	return &WebhookNotifier{
		url:    cfg.URL,
		client: resilience.NewClient(clientCfg),
		logger: cfg.Logger.With().Str("component", "webhook_notifier").Logger(),
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(webhookPayload{
		Event:      "provider_state_change",
		Provider:   event.Provider,
		Kind:       string(event.Kind),
		From:       string(event.From),
		To:         string(event.To),
		OccurredAt: event.OccurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	n.logger.Debug().
		Str("provider", event.Provider).
		Str("to", string(event.To)).
		Msg("webhook delivered")

	return nil
}

type webhookPayload struct {
	Event      string `json:"event"`
	Provider   string `json:"provider"`
	Kind       string `json:"kind"`
	From       string `json:"from"`
	To         string `json:"to"`
	OccurredAt string `json:"occurred_at"`
}

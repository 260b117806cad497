package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/assistant/anthropic"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload["system"])

		response := map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "Rest and monitor your symptoms."},
			},
			"stop_reason": "end_turn",
			"usage": map[string]int{
				"input_tokens":  30,
				"output_tokens": 9,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := anthropic.NewClient(anthropic.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Kind:    assistant.KindSecondary,
	})

	result, err := client.Generate(context.Background(), assistant.GenerationRequest{Message: "I feel dizzy"})
	require.NoError(t, err)

	assert.Equal(t, "Rest and monitor your symptoms.", result.Text)
	assert.Equal(t, "anthropic", result.Provider)
	assert.Equal(t, assistant.KindSecondary, result.Kind)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, 30, result.Tokens.Prompt)
	assert.Equal(t, 9, result.Tokens.Completion)
}

func TestClient_Generate_TruncatedLowersConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]string{{"type": "text", "text": "partial"}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	client := anthropic.NewClient(anthropic.ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	result, err := client.Generate(context.Background(), assistant.GenerationRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0.6, result.Confidence)
}

func TestClient_Generate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := anthropic.NewClient(anthropic.ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), assistant.GenerationRequest{Message: "hello"})

	var provErr *assistant.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "anthropic", provErr.Provider)
}

func TestClient_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []interface{}{},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	client := anthropic.NewClient(anthropic.ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Generate(context.Background(), assistant.GenerationRequest{Message: "hello"})

	var provErr *assistant.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Error(), "empty completion")
}

func TestClient_HealthCheck(t *testing.T) {
	t.Run("minimal message probe", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)

			var payload struct {
				MaxTokens int `json:"max_tokens"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, 1, payload.MaxTokens)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"content": []map[string]string{{"type": "text", "text": "."}},
			})
		}))
		defer server.Close()

		client := anthropic.NewClient(anthropic.ClientConfig{APIKey: "test-key", BaseURL: server.URL})
		assert.True(t, client.HealthCheck(context.Background()))
	})

	t.Run("failure reports false", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := anthropic.NewClient(anthropic.ClientConfig{APIKey: "test-key", BaseURL: server.URL})
		assert.False(t, client.HealthCheck(context.Background()))
	})
}

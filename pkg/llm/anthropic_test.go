package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicMessageBody(text string) map[string]any {
	return map[string]any{
		"id":   "msg_test_001",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":                10,
			"output_tokens":               5,
			"cache_creation_input_tokens": 0,
			"cache_read_input_tokens":     0,
		},
	}
}

func TestAnthropicComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-5-20250929", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessageBody(`{"city": "Paris"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewAnthropic("test-key", WithAnthropicRequestOptions(option.WithBaseURL(ts.URL)))
	got, err := c.Complete(context.Background(), "where is paris")
	require.NoError(t, err)
	assert.JSONEq(t, `{"city": "Paris"}`, got)
}

func TestAnthropicCompleteModelOverride(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-haiku-4-5", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessageBody("ok")) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewAnthropic("test-key",
		WithAnthropicModel("claude-haiku-4-5"),
		WithAnthropicRequestOptions(option.WithBaseURL(ts.URL)),
	)
	_, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewAnthropic("bad-key", WithAnthropicRequestOptions(option.WithBaseURL(ts.URL)))
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
}

func TestAnthropicCompleteNoTextContent(t *testing.T) {
	body := anthropicMessageBody("")
	body["content"] = []map[string]any{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewAnthropic("test-key", WithAnthropicRequestOptions(option.WithBaseURL(ts.URL)))
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

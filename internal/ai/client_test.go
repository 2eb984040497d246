package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/ai"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		messages := req["messages"].([]any)
		require.Len(t, messages, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  Air quality is moderate today.  "}}]
		}`))
	}))
	defer server.Close()

	client := ai.NewClient(ai.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	reply, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "Air quality is moderate today.", reply)
}

func TestClient_Complete_NotConfigured(t *testing.T) {
	client := ai.NewClient(ai.ClientConfig{HTTPClient: http.DefaultClient})

	assert.False(t, client.Configured())
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := ai.NewClient(ai.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestClient_Complete_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := ai.NewClient(ai.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

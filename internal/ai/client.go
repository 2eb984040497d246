// Package ai generates narrative summaries of analysis runs through an
// OpenAI-compatible chat completions API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airsight/airsight/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the default chat completions API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the default completion model.
	DefaultModel = "gpt-4o-mini"
)

// Client errors.
var (
	ErrNotConfigured = errors.New("ai client not configured")
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the completions client.
type ClientConfig struct {
	// APIKey authenticates against the completions API (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL). Any
	// OpenAI-compatible endpoint works.
	BaseURL string

	// Model is the completion model (defaults to DefaultModel).
	Model string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for completion requests (default: 60s, completions are slow).
	Timeout time.Duration
}

// Client is a chat completions API client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient HTTPDoer
}

// NewClient creates a new completions client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            "ai",
			Timeout:         timeout,
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Wire types for the chat completions endpoint.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a system and user prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   600,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from completions endpoint", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

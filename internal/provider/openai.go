package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"voyago/internal/config"
)

// ErrNoCompletion is returned when every configured model failed to
// produce a completion.
var ErrNoCompletion = errors.New("provider returned no completion")

// Client calls an OpenAI-compatible chat completions endpoint. Models
// are tried in order until one responds; which model answered is an
// implementation detail surfaced only for diagnostics.
type Client struct {
	baseURL    string
	apiKey     string
	models     []string
	maxTokens  int
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		models:     cfg.Models,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete requests a single completion for the prompt. Each configured
// model gets up to maxRetries attempts before the next model is tried.
// Returns the raw completion text and the model that produced it.
func (c *Client) Complete(ctx context.Context, prompt string) (string, string, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for _, model := range c.models {
		for attempt := 0; attempt < attempts; attempt++ {
			text, err := c.complete(ctx, model, prompt)
			if err == nil {
				return text, model, nil
			}
			lastErr = err

			// Context errors won't recover on retry.
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}

			log.Printf("provider model %s attempt %d failed: %v", model, attempt+1, err)
		}
	}

	if lastErr == nil {
		lastErr = ErrNoCompletion
	}
	return "", "", lastErr
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Bound the response read so a misbehaving provider cannot exhaust memory.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("provider response decode: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("provider error: %s", parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrNoCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

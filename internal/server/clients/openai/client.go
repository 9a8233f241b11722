// Package openai implements a small OpenAI chat-completions client used to
// generate repurposing suggestions for clips.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultBaseURL = "https://api.openai.com"

	// DefaultModel is used when the caller does not pick one.
	DefaultModel = "gpt-4o-mini"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// APIError is a non-2xx response from the OpenAI API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the OpenAI chat-completions API. BaseURL is overridable
// for tests.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func New() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ChatCompletion sends the messages to the given model and returns the
// content of the first choice.
func (c *Client) ChatCompletion(ctx context.Context, apiKey, model string, messages []Message) (string, error) {
	if model == "" {
		model = DefaultModel
	}

	payload, err := json.Marshal(chatRequest{Model: model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("openai: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("openai: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	parsed := &chatResponse{}
	if err := json.Unmarshal(body, parsed); err != nil {
		return "", fmt.Errorf("openai: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

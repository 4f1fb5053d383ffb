package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel       = "llama3-8b-8192"
	defaultHTTPTimeout = 30 * time.Second
)

// Config captures the runtime settings required to talk to the completion API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible chat completion API (Groq by default).
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the attempt count (defaults to a single attempt).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = baseDelay
		c.retry.max = maxDelay
	}
}

// WithSleeper replaces the retry wait, for tests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleeper = sleeper }
}

// NewClient constructs a completion client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        firstNonEmpty(cfg.BaseURL, defaultBaseURL),
			Model:          firstNonEmpty(cfg.Model, defaultModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		retry:      defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete issues a chat completion with a system instruction, the user content,
// and a token budget. It returns the trimmed text produced by the model.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: user prompt required")
	case c.cfg.APIKey == "":
		return "", errors.New("llm complete: api key required")
	}
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: maxTokens,
	}

	var content string
	err := c.retry.do(ctx, "llm complete", func() error {
		resp, body, err := c.post(ctx, req)
		if err != nil {
			return err
		}
		text, finish := resp.content()
		if text != "" {
			content = text
			return nil
		}
		if len(resp.Choices) == 0 {
			return errors.New("llm complete: empty choices")
		}
		return &emptyContentError{Op: "llm complete", FinishReason: finish, Snippet: snippet(body)}
	})
	return content, err
}

// post sends one request and decodes the reply. Non-2xx statuses come back as
// *httpStatusError with the raw body.
func (c *Client) post(ctx context.Context, payload chatRequest) (chatResponse, []byte, error) {
	var out chatResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return out, nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return out, nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, nil, fmt.Errorf("llm request: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return out, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if out.Error != nil {
		return out, body, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(out.Error.Message))
	}
	return out, body, nil
}

// backoffDelay is the wait before retry number attempt.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.retry.backoff(attempt)
}

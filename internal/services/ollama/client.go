package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	defaultServerURL = "http://localhost:11434"
	defaultModel     = "llama3"
)

// Config selects the Ollama server and model.
type Config struct {
	ServerURL string
	Model     string
}

// Client issues completions against an llms.Model.
type Client struct {
	model llms.Model
}

// New connects to the configured Ollama server.
func New(cfg Config) (*Client, error) {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	llm, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama: new client: %w", err)
	}
	return &Client{model: llm}, nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model) *Client {
	return &Client{model: model}
}

// Complete sends the system and user prompts and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c == nil || c.model == nil {
		return "", errors.New("ollama complete: model unavailable")
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, strings.TrimSpace(systemPrompt)),
		llms.TextParts(llms.ChatMessageTypeHuman, strings.TrimSpace(userPrompt)),
	}
	var opts []llms.CallOption
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("ollama complete: %w", err)
	}
	if resp == nil {
		return "", errors.New("ollama complete: empty response")
	}
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		if content := strings.TrimSpace(choice.Content); content != "" {
			return content, nil
		}
	}
	return "", errors.New("ollama complete: empty content")
}

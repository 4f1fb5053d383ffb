package llm

import (
	"fmt"
	"strings"
	"time"
)

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
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chatChoice accepts the chat schema plus the streaming (delta) and legacy
// completion (text) shapes some compatible servers return.
type chatChoice struct {
	Message      chatMessage `json:"message"`
	Delta        chatMessage `json:"delta"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"`
}

// content returns the first non-blank choice text and the first finish reason.
func (r chatResponse) content() (string, string) {
	var finish string
	for _, choice := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		if text := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); text != "" {
			return text, finish
		}
	}
	return "", finish
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, e.Body)
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, response_snippet=%s)", e.Op, e.FinishReason, e.Snippet)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// snippet collapses whitespace and keeps the first 160 runes of a body.
func snippet(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); len(runes) > 160 {
		clean = string(runes[:160]) + "..."
	}
	return clean
}

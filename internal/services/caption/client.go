package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api-inference.huggingface.co/models/"
	defaultModel       = "Salesforce/blip-image-captioning-large"
	defaultHTTPTimeout = 60 * time.Second
)

// Config captures the inference endpoint settings.
type Config struct {
	APIToken       string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client captions images through the Hugging Face inference API.
type Client struct {
	cfg        Config
	httpClient *http.Client
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

// NewClient constructs a captioning client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIToken:       strings.TrimSpace(cfg.APIToken),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.Trim(strings.TrimSpace(cfg.Model), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(client.cfg.BaseURL, "/") {
		client.cfg.BaseURL += "/"
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	return client
}

// Endpoint reports the URL captions are requested from.
func (c *Client) Endpoint() string {
	return c.cfg.BaseURL + c.cfg.Model
}

type captionRequest struct {
	Inputs captionInputs `json:"inputs"`
}

type captionInputs struct {
	Image string `json:"image"`
}

type captionResult struct {
	GeneratedText *string `json:"generated_text"`
}

type apiError struct {
	Error string `json:"error"`
}

// ResponseError reports a reply that did not carry a caption.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.StatusCode > 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("caption response: http %d: %s", e.StatusCode, e.Message)
	}
	return "caption response: " + e.Message
}

// Caption returns the generated caption for the image bytes.
func (c *Client) Caption(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("caption: empty image")
	}
	payload := captionRequest{Inputs: captionInputs{Image: base64.StdEncoding.EncodeToString(image)}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("caption: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("caption: new request: %w", err)
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("caption: read body: %w", err)
	}
	return parseCaption(resp.StatusCode, body)
}

func parseCaption(status int, body []byte) (string, error) {
	var results []captionResult
	if err := json.Unmarshal(body, &results); err == nil {
		if len(results) > 0 && results[0].GeneratedText != nil {
			return strings.TrimSpace(*results[0].GeneratedText), nil
		}
		return "", &ResponseError{StatusCode: status, Message: "no generated_text in " + snippet(body)}
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && strings.TrimSpace(apiErr.Error) != "" {
		return "", &ResponseError{StatusCode: status, Message: strings.TrimSpace(apiErr.Error)}
	}
	return "", &ResponseError{StatusCode: status, Message: "unexpected payload " + snippet(body)}
}

func snippet(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 120
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}

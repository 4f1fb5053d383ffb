package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel  = "gemini-2.0-flash"
	defaultPrompt = "Write a short one-sentence caption describing this image."
)

// Config selects the Gemini model and credentials.
type Config struct {
	APIKey string
	Model  string
	Prompt string
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Captioner produces image captions with a Gemini model.
type Captioner struct {
	models generator
	model  string
	prompt string
}

// New creates a Gemini captioner backed by the Gemini API.
func New(ctx context.Context, cfg Config) (*Captioner, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newCaptioner(client.Models, cfg), nil
}

func newCaptioner(models generator, cfg Config) *Captioner {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &Captioner{models: models, model: model, prompt: prompt}
}

// Caption asks the model to describe the image.
func (c *Captioner) Caption(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("gemini caption: empty image")
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(c.prompt),
			genai.NewPartFromBytes(image, http.DetectContentType(image)),
		}, genai.RoleUser),
	}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini caption: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini caption: empty response")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini caption: no text in response")
	}
	return text, nil
}

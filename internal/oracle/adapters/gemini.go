package adapters

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"credverify/internal/oracle"
)

// GenerateContentAPI is satisfied by (*genai.Client).Models.
type GenerateContentAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGeminiClient creates a Gemini API client authenticated by API key.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// GeminiCompleter answers prompts with a Gemini model.
type GeminiCompleter struct {
	models      GenerateContentAPI
	model       string
	temperature float32
}

func NewGeminiCompleter(models GenerateContentAPI, model string) *GeminiCompleter {
	return &GeminiCompleter{models: models, model: model, temperature: 0.2}
}

func (g *GeminiCompleter) Complete(ctx context.Context, p oracle.Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(p.Text), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

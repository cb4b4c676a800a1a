package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini generates replies with the Gemini API
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini API generator. baseURL is optional.
func NewGemini(ctx context.Context, apiKey, baseURL string) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

// Generate returns the complete reply
func (g *Gemini) Generate(ctx context.Context, model, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	log.Debug().Str("model", model).Int("chars", len(text)).Msg("Gemini reply received")
	return text, nil
}

// Stream yields reply fragments as they arrive
func (g *Gemini) Stream(ctx context.Context, model, prompt string, yield func(string) error) error {
	chunks := 0
	for res, err := range g.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), nil) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		text := res.Text()
		if text == "" {
			continue
		}
		chunks++
		if err := yield(text); err != nil {
			return err
		}
	}
	if chunks == 0 {
		return ErrEmptyResponse
	}
	return nil
}

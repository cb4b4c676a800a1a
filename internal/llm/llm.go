// Package llm connects the chat endpoints to a text generation provider.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/daikw/sportsbot/internal/config"
)

// ErrEmptyResponse is returned when the provider produced no text
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator produces a reply for a composed prompt
type Generator interface {
	Name() string

	// Generate returns the complete reply
	Generate(ctx context.Context, model, prompt string) (string, error)

	// Stream calls yield with each text fragment in order. An error returned by
	// yield stops the stream and is returned.
	Stream(ctx context.Context, model, prompt string, yield func(token string) error) error
}

// New creates the generator for the configured provider.
// A missing credential is reported as config.ErrMissingCredential.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if cfg.Provider == config.ProviderMock {
		return NewMock(), nil
	}

	key, err := cfg.Credential()
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGemini(ctx, key, cfg.BaseURL)
	case config.ProviderOpenAI:
		return NewOpenAI(key, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/daikw/sportsbot/internal/stream"
)

// Streamer runs conversation turns against a Generator in-process, with the
// same validation and cancellation semantics as the HTTP stream client.
type Streamer struct {
	gen   Generator
	model string
}

// NewStreamer creates a streamer generating with model
func NewStreamer(gen Generator, model string) *Streamer {
	return &Streamer{gen: gen, model: model}
}

// Stream generates a reply for prompt, passing the accumulated text to onPartial
func (s *Streamer) Stream(ctx context.Context, prompt string, onPartial func(string)) (string, error) {
	if err := stream.ValidatePrompt(prompt); err != nil {
		return "", err
	}

	var sb strings.Builder
	err := s.gen.Stream(ctx, s.model, prompt, func(token string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sb.WriteString(token)
		if onPartial != nil {
			onPartial(sb.String())
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return "", stream.ErrCanceled
		}
		return "", err
	}
	return sb.String(), nil
}

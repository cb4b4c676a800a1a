package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates replies with an OpenAI compatible chat completions API
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates a chat completions generator. baseURL is optional.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

// Name returns the provider name
func (o *OpenAI) Name() string {
	return "openai"
}

func chatRequest(model, prompt string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: stream,
	}
}

// Generate returns the complete reply
func (o *OpenAI) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, chatRequest(model, prompt, false))
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream yields content deltas as they arrive
func (o *OpenAI) Stream(ctx context.Context, model, prompt string, yield func(string) error) error {
	stream, err := o.client.CreateChatCompletionStream(ctx, chatRequest(model, prompt, true))
	if err != nil {
		return fmt.Errorf("failed to create completion stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close completion stream")
		}
	}()

	chunks := 0
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("completion stream: %w", err)
		}
		if len(response.Choices) == 0 || response.Choices[0].Delta.Content == "" {
			continue
		}
		chunks++
		if err := yield(response.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if chunks == 0 {
		return ErrEmptyResponse
	}
	return nil
}

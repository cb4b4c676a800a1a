package stream

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
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// DefaultModel is the model alias sent with every request
const DefaultModel = "smart"

const defaultReadSize = 4096

// Client talks to the chat endpoints of a sportsbot server
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	readSize   int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model alias sent with each request
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithReadSize sets the size of each transport read
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// NewClient creates a client for the server at baseURL.
// No request timeout is set; streams are bounded by the caller's context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      DefaultModel,
		httpClient: &http.Client{},
		readSize:   defaultReadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidatePrompt checks a prompt before it is sent
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptLength {
		return fmt.Errorf("%w: %d > %d characters", ErrPromptTooLong, n, MaxPromptLength)
	}
	return nil
}

// Stream sends prompt to the streaming endpoint and returns the complete reply.
// onPartial receives the accumulated text after every token and is never called
// once ctx is canceled. A canceled stream returns ErrCanceled and no text.
func (c *Client) Stream(ctx context.Context, prompt string, onPartial func(string)) (string, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return "", err
	}

	resp, err := c.post(ctx, StreamPath, prompt)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readHTTPError(resp)
	}

	start := time.Now()
	dec := NewDecoder(func(text string) {
		if ctx.Err() == nil && onPartial != nil {
			onPartial(text)
		}
	})
	buf := make([]byte, c.readSize)

	for {
		if err := ctxError(ctx); err != nil {
			return "", err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := ctxError(ctx); err != nil {
				return "", err
			}
			done, err := dec.Write(buf[:n])
			if err != nil {
				return "", err
			}
			if done {
				logStats(dec, start)
				return dec.Text(), nil
			}
		}

		if errors.Is(readErr, io.EOF) {
			text, err := dec.Close()
			if err != nil {
				return "", err
			}
			logStats(dec, start)
			return text, nil
		}
		if readErr != nil {
			if err := ctxError(ctx); err != nil {
				return "", err
			}
			return "", fmt.Errorf("failed to read stream: %w", readErr)
		}
	}
}

// Complete sends prompt to the non-streaming endpoint
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return "", err
	}

	resp, err := c.post(ctx, CompletePath, prompt)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readHTTPError(resp)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if cerr := ctxError(ctx); cerr != nil {
			return "", cerr
		}
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !body.Success {
		return "", &StreamError{Message: body.Error}
	}
	return body.Response, nil
}

func (c *Client) post(ctx context.Context, path, prompt string) (*http.Response, error) {
	payload, err := json.Marshal(Request{Message: prompt, AIModel: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("url", req.URL.String()).
		Int("prompt_length", utf8.RuneCountInString(prompt)).
		Msg("Sending chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if cerr := ctxError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// ctxError maps a finished context to the error reported to callers.
// Only cancellation is silent; a deadline is an ordinary failure.
func ctxError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	default:
		return fmt.Errorf("stream aborted: %w", err)
	}
}

func readHTTPError(resp *http.Response) error {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return httpErr
	}
	var body Response
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		httpErr.Message = body.Error
	}
	return httpErr
}

func logStats(dec *Decoder, start time.Time) {
	stats := dec.Stats()
	log.Debug().
		Int("events", stats.Events).
		Int("non_event", stats.NonEvent).
		Int("malformed", stats.Malformed).
		Int("unrecognized", stats.Unrecognized).
		Int("length", utf8.RuneCountInString(dec.Text())).
		Dur("elapsed", time.Since(start)).
		Msg("Stream completed")
}

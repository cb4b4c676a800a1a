package stream

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt is returned when there is nothing to send
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrPromptTooLong is returned when a prompt exceeds MaxPromptLength
	ErrPromptTooLong = errors.New("prompt exceeds maximum length")

	// ErrCanceled is returned when the caller cancels an in-flight stream.
	// It wraps context.Canceled and must never be shown to the user.
	ErrCanceled = fmt.Errorf("stream canceled: %w", context.Canceled)

	// ErrUnexpectedEOF is returned when the transport closes before a done event
	ErrUnexpectedEOF = &ProtocolError{Reason: "stream ended before done event"}
)

// StreamError carries the message of an error payload sent by the server
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// ProtocolError reports a stream that violates the line protocol
type ProtocolError struct {
	Reason string
	Line   string
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return "protocol error: " + e.Reason
	}
	return fmt.Sprintf("protocol error: %s: %q", e.Reason, e.Line)
}

// HTTPError reports a non-2xx response from the chat endpoint
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d: %s", e.StatusCode, e.Message)
}

// IsCanceled reports whether err is a user-initiated cancellation
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsValidation reports whether err was raised before any network call
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyPrompt) || errors.Is(err, ErrPromptTooLong)
}

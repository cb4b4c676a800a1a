package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Endpoint paths served by the chat server
const (
	CompletePath = "/api/chat"
	StreamPath   = "/api/chat-stream"
)

// EventPrefix marks a stream line as carrying a JSON payload
const EventPrefix = "data: "

// MaxPromptLength is the largest accepted message, in characters
const MaxPromptLength = 100000

// Request is the JSON body accepted by both chat endpoints
type Request struct {
	Message string `json:"message"`
	AIModel string `json:"aiModel,omitempty"`
}

// Response is the JSON body returned by the non-streaming endpoint
type Response struct {
	Response string `json:"response,omitempty"`
	Success  bool   `json:"success,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Event is one payload of the streaming endpoint.
// Exactly one of Token, Done or Error is meaningful per event.
type Event struct {
	Token   string `json:"token,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// TokenEvent carries one generated fragment
func TokenEvent(token string) Event { return Event{Token: token} }

// DoneEvent finalizes a stream
func DoneEvent() Event { return Event{Done: true} }

// ErrorEvent aborts a stream with message
func ErrorEvent(message string) Event { return Event{Error: true, Message: message} }

// WriteEvent writes ev as a single prefixed line followed by a blank separator line
func WriteEvent(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	buf := make([]byte, 0, len(EventPrefix)+len(payload)+2)
	buf = append(buf, EventPrefix...)
	buf = append(buf, payload...)
	buf = append(buf, '\n', '\n')
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const studentMarker = "\n\nStudent: "

// Mock answers without calling a provider, for demos and tests
type Mock struct {
	// Delay is waited before each streamed word
	Delay time.Duration
	// Err, when set, is returned instead of a reply
	Err error
}

// NewMock creates a mock generator
func NewMock() *Mock {
	return &Mock{}
}

// Name returns the provider name
func (m *Mock) Name() string {
	return "mock"
}

// Generate returns a canned reply that quotes the student's last question
func (m *Mock) Generate(_ context.Context, _, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return mockReply(prompt), nil
}

// Stream yields the canned reply word by word
func (m *Mock) Stream(ctx context.Context, _, prompt string, yield func(string) error) error {
	if m.Err != nil {
		return m.Err
	}
	words := strings.SplitAfter(mockReply(prompt), " ")
	for _, w := range words {
		if m.Delay > 0 {
			select {
			case <-time.After(m.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(w); err != nil {
			return err
		}
	}
	return nil
}

func mockReply(prompt string) string {
	question := prompt
	if i := strings.LastIndex(prompt, studentMarker); i >= 0 {
		question = prompt[i+len(studentMarker):]
		if j := strings.Index(question, "\n\n"); j >= 0 {
			question = question[:j]
		}
	}
	question = strings.TrimSpace(question)
	return fmt.Sprintf("Goede vraag! Je vroeg: %q. Daar vertel ik je graag meer over.", question)
}

package conversation

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/stream"
)

// Streamer produces a reply for a prompt, publishing the accumulated text as it grows.
// *stream.Client implements it.
type Streamer interface {
	Stream(ctx context.Context, prompt string, onPartial func(string)) (string, error)
}

// Session is one conversation with a persona, backed by a Streamer
type Session struct {
	state    *State
	streamer Streamer
}

// NewSession creates a session around state
func NewSession(state *State, streamer Streamer) *Session {
	return &Session{state: state, streamer: streamer}
}

// State returns the session's conversation state
func (s *Session) State() *State {
	return s.state
}

// Send appends text as a user message and streams the persona's reply.
//
// Empty text or an active stream return ErrEmptyMessage or ErrBusy without
// touching the log. A prompt rejected by validation is also returned before any
// mutation. A canceled stream returns an error matching stream.IsCanceled and
// commits nothing. Any other failure is recorded as an apology message, which is
// returned together with the error.
func (s *Session) Send(ctx context.Context, text string, onPartial func(string)) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}
	if s.state.Streaming() {
		return Message{}, ErrBusy
	}

	prompt := ComposePrompt(s.state.Persona(), s.state.Messages(), text)
	if err := stream.ValidatePrompt(prompt); err != nil {
		return Message{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	id, err := s.state.BeginStream(cancel)
	if err != nil {
		cancel()
		return Message{}, err
	}
	s.state.AppendUser(text)

	reply, err := s.streamer.Stream(ctx, prompt, func(partial string) {
		if s.state.UpdatePartial(id, partial) && onPartial != nil {
			onPartial(partial)
		}
	})

	switch {
	case err == nil:
		return s.state.Commit(id, reply)
	case stream.IsCanceled(err):
		s.state.Abort(id)
		log.Debug().Msg("Stream canceled")
		return Message{}, err
	default:
		log.Error().Err(err).Msg("Chat error")
		msg, ferr := s.state.Fail(id, err)
		if ferr != nil {
			return Message{}, err
		}
		return msg, err
	}
}

// Cancel aborts the in-flight reply, if any
func (s *Session) Cancel() bool {
	return s.state.Cancel()
}

// Reset cancels any in-flight reply and restores the welcome message
func (s *Session) Reset() {
	s.state.Reset()
}

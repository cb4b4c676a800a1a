package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/persona"
)

// ApologyFormat is the assistant reply appended when a send fails
const ApologyFormat = "Sorry, er is een technische fout opgetreden. Probeer het opnieuw. (%s)"

var (
	// ErrEmptyMessage is returned when a send has no text
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned when a stream is already active
	ErrBusy = errors.New("a response is still being generated")

	// ErrStaleStream is returned when an operation targets a stream that is no longer active
	ErrStaleStream = errors.New("stream is no longer active")
)

type activeStream struct {
	id     string
	cancel context.CancelFunc
}

// State is the conversation log plus the single in-flight stream of one session.
// All mutation goes through its methods.
type State struct {
	mu       sync.Mutex
	persona  persona.Persona
	messages []Message
	partial  string
	active   *activeStream
	now      func() time.Time
}

// NewState creates a log holding only the persona's welcome message
func NewState(p persona.Persona) *State {
	s := &State{persona: p, now: time.Now}
	s.messages = []Message{s.welcome()}
	return s
}

// Persona returns the persona the log belongs to
func (s *State) Persona() persona.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// Messages returns a copy of the committed log
func (s *State) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Partial returns the text of the in-flight reply, if any
func (s *State) Partial() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partial
}

// Streaming reports whether a stream is active
func (s *State) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// LastAssistant returns the most recent committed assistant message
func (s *State) LastAssistant() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// AppendUser adds a user message to the log
func (s *State) AppendUser(text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := newMessage(RoleUser, text, s.now())
	s.messages = append(s.messages, msg)
	return msg
}

// BeginStream registers a new in-flight stream and returns its id.
// cancel is invoked when the stream is canceled or the log is reset.
func (s *State) BeginStream(cancel context.CancelFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return "", ErrBusy
	}
	s.active = &activeStream{id: uuid.NewString(), cancel: cancel}
	s.partial = ""
	return s.active.id, nil
}

// UpdatePartial replaces the displayed partial text. Updates for a stream that
// is no longer active are dropped and reported as false.
func (s *State) UpdatePartial(id, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive(id) {
		return false
	}
	s.partial = text
	return true
}

// Commit turns the finished reply into an assistant message and ends the stream
func (s *State) Commit(id, text string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive(id) {
		return Message{}, ErrStaleStream
	}
	msg := newMessage(RoleAssistant, text, s.now())
	s.messages = append(s.messages, msg)
	s.endLocked()
	return msg, nil
}

// Abort ends the stream without adding a message
func (s *State) Abort(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isActive(id) {
		s.endLocked()
	}
}

// Fail ends the stream and appends an apology carrying the error text
func (s *State) Fail(id string, cause error) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive(id) {
		return Message{}, ErrStaleStream
	}
	msg := newMessage(RoleAssistant, fmt.Sprintf(ApologyFormat, cause.Error()), s.now())
	s.messages = append(s.messages, msg)
	s.endLocked()
	return msg, nil
}

// Cancel cancels the active stream, if any. The stream's owner observes the
// cancellation and calls Abort.
func (s *State) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	s.active.cancel()
	return true
}

// Reset cancels any active stream and replaces the log with a fresh welcome message
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.cancel()
		s.endLocked()
	}
	s.messages = []Message{s.welcome()}
	log.Debug().Str("persona", string(s.persona.ID)).Msg("Conversation reset")
}

// SetPersona switches persona and resets the log
func (s *State) SetPersona(p persona.Persona) {
	s.mu.Lock()
	s.persona = p
	s.mu.Unlock()
	s.Reset()
}

func (s *State) isActive(id string) bool {
	return s.active != nil && s.active.id == id
}

func (s *State) endLocked() {
	s.active.cancel()
	s.active = nil
	s.partial = ""
}

func (s *State) welcome() Message {
	return newMessage(RoleAssistant, s.persona.Welcome(), s.now())
}

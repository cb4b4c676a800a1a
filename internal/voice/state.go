package voice

import (
	"errors"
	"fmt"
)

// Status is the playback status of the speech controller
type Status int

const (
	StatusIdle Status = iota
	StatusWaiting
	StatusPlaying
	StatusPaused
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// EventType enumerates what can happen to an utterance
type EventType int

const (
	EventRequested EventType = iota
	EventStarted
	EventPaused
	EventResumed
	EventEnded
	EventStopped
	EventFailed
	EventCleared
)

func (t EventType) String() string {
	switch t {
	case EventRequested:
		return "requested"
	case EventStarted:
		return "started"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventEnded:
		return "ended"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	case EventCleared:
		return "cleared"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Failure reasons that mean the utterance was cut short on purpose
const (
	ReasonInterrupted = "interrupted"
	ReasonCanceled    = "canceled"
)

// Event is a playback event for one utterance
type Event struct {
	Type      EventType
	Utterance uint64
	Reason    string
	Err       error
}

// ErrInvalidTransition is returned by Next for events that do not apply to the current status
var ErrInvalidTransition = errors.New("invalid playback transition")

// Next returns the status reached from s by ev
func Next(s Status, ev Event) (Status, error) {
	switch ev.Type {
	case EventRequested:
		if s == StatusIdle || s == StatusError {
			return StatusWaiting, nil
		}
	case EventStarted:
		if s == StatusWaiting {
			return StatusPlaying, nil
		}
	case EventPaused:
		if s == StatusPlaying || s == StatusPaused {
			return StatusPaused, nil
		}
	case EventResumed:
		if s == StatusPaused || s == StatusPlaying {
			return StatusPlaying, nil
		}
	case EventEnded:
		if s == StatusWaiting || s == StatusPlaying || s == StatusPaused {
			return StatusIdle, nil
		}
	case EventStopped:
		return StatusIdle, nil
	case EventFailed:
		if ev.Reason == ReasonInterrupted || ev.Reason == ReasonCanceled {
			return StatusIdle, nil
		}
		return StatusError, nil
	case EventCleared:
		if s == StatusError {
			return StatusIdle, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.Type, s)
}

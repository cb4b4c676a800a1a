package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    Status
		event   Event
		want    Status
		invalid bool
	}{
		{StatusIdle, Event{Type: EventRequested}, StatusWaiting, false},
		{StatusError, Event{Type: EventRequested}, StatusWaiting, false},
		{StatusPlaying, Event{Type: EventRequested}, StatusPlaying, true},
		{StatusWaiting, Event{Type: EventStarted}, StatusPlaying, false},
		{StatusIdle, Event{Type: EventStarted}, StatusIdle, true},
		{StatusPlaying, Event{Type: EventPaused}, StatusPaused, false},
		{StatusPaused, Event{Type: EventPaused}, StatusPaused, false},
		{StatusIdle, Event{Type: EventPaused}, StatusIdle, true},
		{StatusPaused, Event{Type: EventResumed}, StatusPlaying, false},
		{StatusPlaying, Event{Type: EventResumed}, StatusPlaying, false},
		{StatusWaiting, Event{Type: EventResumed}, StatusWaiting, true},
		{StatusPlaying, Event{Type: EventEnded}, StatusIdle, false},
		{StatusWaiting, Event{Type: EventEnded}, StatusIdle, false},
		{StatusPaused, Event{Type: EventEnded}, StatusIdle, false},
		{StatusError, Event{Type: EventEnded}, StatusError, true},
		{StatusPaused, Event{Type: EventStopped}, StatusIdle, false},
		{StatusError, Event{Type: EventStopped}, StatusIdle, false},
		{StatusPlaying, Event{Type: EventFailed, Reason: ReasonInterrupted}, StatusIdle, false},
		{StatusWaiting, Event{Type: EventFailed, Reason: ReasonCanceled}, StatusIdle, false},
		{StatusPlaying, Event{Type: EventFailed, Reason: ReasonSynthesis}, StatusError, false},
		{StatusWaiting, Event{Type: EventFailed}, StatusError, false},
		{StatusError, Event{Type: EventCleared}, StatusIdle, false},
		{StatusPlaying, Event{Type: EventCleared}, StatusPlaying, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.event.Type.String()+"/"+tt.event.Reason, func(t *testing.T) {
			got, err := Next(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "paused", StatusPaused.String())
	assert.Equal(t, "status(42)", Status(42).String())
	assert.Equal(t, "cleared", EventCleared.String())
}

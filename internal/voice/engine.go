package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/voice/provider"
)

// Failure reasons reported by SynthEngine besides interruption and cancellation
const (
	ReasonSynthesis = "synthesis-failed"
	ReasonPlayback  = "audio-busy"
)

// ErrInterrupted is the cancellation cause used when a new utterance replaces the current one
var ErrInterrupted = errors.New("utterance interrupted")

// Utterance is one request to read text aloud
type Utterance struct {
	ID       uint64
	Text     string
	Voice    *Voice
	Language string
	Rate     float64
	Pitch    float64
	Volume   float64
}

// Engine plays utterances.
//
// Speak must return without emitting; playback progress is reported
// asynchronously through emit, tagged with the utterance ID.
type Engine interface {
	Speak(ctx context.Context, u Utterance, emit func(Event)) error
	Pause() error
	Resume() error
	Cancel()
}

// SynthEngine synthesizes speech with a cloud provider and plays it through a local player
type SynthEngine struct {
	provider provider.Provider
	player   Player
	base     provider.SynthesizeOptions

	mu       sync.Mutex
	playback Playback
}

// NewSynthEngine creates an engine. base carries provider specific options
// such as format and engine; per utterance fields are filled in on Speak.
func NewSynthEngine(p provider.Provider, player Player, base provider.SynthesizeOptions) *SynthEngine {
	if base.Format == "" {
		base.Format = "mp3"
	}
	return &SynthEngine{provider: p, player: player, base: base}
}

// Speak starts synthesis and playback in the background
func (e *SynthEngine) Speak(ctx context.Context, u Utterance, emit func(Event)) error {
	if e.provider == nil {
		return errors.New("no speech provider configured")
	}
	if e.player == nil {
		return ErrNoPlayer
	}
	go e.run(ctx, u, emit)
	return nil
}

func (e *SynthEngine) run(ctx context.Context, u Utterance, emit func(Event)) {
	opts := e.base
	opts.Rate = u.Rate
	opts.Pitch = u.Pitch
	opts.Volume = u.Volume
	opts.Language = u.Language
	if u.Voice != nil {
		opts.Voice = u.Voice.ID
		opts.Language = u.Voice.Language
	}

	audio, err := e.provider.Synthesize(ctx, u.Text, opts)
	if err != nil {
		emit(failure(ctx, u.ID, ReasonSynthesis, err))
		return
	}

	path, err := saveTemp(audio, opts.Format)
	if err != nil {
		emit(failure(ctx, u.ID, ReasonSynthesis, err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Failed to remove audio file")
		}
	}()

	if ctx.Err() != nil {
		emit(failure(ctx, u.ID, ReasonCanceled, ctx.Err()))
		return
	}

	pb, err := e.player.Start(ctx, path)
	if err != nil {
		emit(failure(ctx, u.ID, ReasonPlayback, err))
		return
	}
	e.mu.Lock()
	e.playback = pb
	e.mu.Unlock()

	emit(Event{Type: EventStarted, Utterance: u.ID})
	log.Debug().Uint64("utterance", u.ID).Str("provider", e.provider.Name()).Msg("Playback started")

	err = pb.Wait()

	e.mu.Lock()
	if e.playback == pb {
		e.playback = nil
	}
	e.mu.Unlock()

	if err != nil || ctx.Err() != nil {
		emit(failure(ctx, u.ID, ReasonPlayback, err))
		return
	}
	emit(Event{Type: EventEnded, Utterance: u.ID})
}

// Pause suspends the current playback, if any
func (e *SynthEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback == nil {
		return nil
	}
	return e.playback.Pause()
}

// Resume continues a paused playback, if any
func (e *SynthEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playback == nil {
		return nil
	}
	return e.playback.Resume()
}

// Cancel stops the current playback, if any
func (e *SynthEngine) Cancel() {
	e.mu.Lock()
	pb := e.playback
	e.playback = nil
	e.mu.Unlock()
	if pb == nil {
		return
	}
	if err := pb.Stop(); err != nil {
		log.Debug().Err(err).Msg("Failed to stop playback")
	}
}

// failure builds a failed event, reporting cancellation in preference to the error itself
func failure(ctx context.Context, id uint64, reason string, err error) Event {
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		if errors.Is(cause, ErrInterrupted) {
			return Event{Type: EventFailed, Utterance: id, Reason: ReasonInterrupted, Err: cause}
		}
		return Event{Type: EventFailed, Utterance: id, Reason: ReasonCanceled, Err: cause}
	}
	return Event{Type: EventFailed, Utterance: id, Reason: reason, Err: err}
}

// saveTemp writes synthesized audio to a temporary file and closes the stream
func saveTemp(audio io.ReadCloser, format string) (string, error) {
	defer func() { _ = audio.Close() }()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("sportsbot_*.%s", audioExtension(format)))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := io.Copy(tmpFile, audio); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	return tmpFile.Name(), nil
}

func audioExtension(format string) string {
	switch format {
	case "ogg", "ogg_vorbis", "ogg_opus":
		return "ogg"
	case "pcm":
		return "pcm"
	case "wav", "linear16":
		return "wav"
	default:
		return "mp3"
	}
}

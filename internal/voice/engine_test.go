package voice

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/sportsbot/internal/voice/provider"
)

type fakeProvider struct {
	mu   sync.Mutex
	opts []provider.SynthesizeOptions
	err  error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ListVoices(context.Context) ([]provider.Voice, error) { return nil, nil }

func (p *fakeProvider) IsAvailable(context.Context) bool { return true }

func (p *fakeProvider) Synthesize(_ context.Context, text string, opts provider.SynthesizeOptions) (io.ReadCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = append(p.opts, opts)
	if p.err != nil {
		return nil, p.err
	}
	return io.NopCloser(strings.NewReader("audio:" + text)), nil
}

type fakePlayback struct {
	release chan struct{}
	ctx     context.Context
	paused  bool
}

func (p *fakePlayback) Wait() error {
	select {
	case <-p.release:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *fakePlayback) Pause() error  { p.paused = true; return nil }
func (p *fakePlayback) Resume() error { p.paused = false; return nil }
func (p *fakePlayback) Stop() error   { return nil }

type fakePlayer struct {
	mu       sync.Mutex
	contents []string
	playback *fakePlayback
	started  chan struct{}
}

func (p *fakePlayer) Start(ctx context.Context, path string) (Playback, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contents = append(p.contents, string(data))
	p.playback = &fakePlayback{release: make(chan struct{}), ctx: ctx}
	close(p.started)
	return p.playback, nil
}

func collectEvents() (func(Event), <-chan Event) {
	ch := make(chan Event, 8)
	return func(ev Event) { ch <- ev }, ch
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for engine event")
		return Event{}
	}
}

func TestSynthEngine_PlaysUtterance(t *testing.T) {
	prov := &fakeProvider{}
	player := &fakePlayer{started: make(chan struct{})}
	engine := NewSynthEngine(prov, player, provider.SynthesizeOptions{Engine: "neural"})
	emit, events := collectEvents()

	u := Utterance{
		ID:     7,
		Text:   "Hallo",
		Voice:  &Voice{ID: "Laura", Language: "nl-NL"},
		Rate:   1.5,
		Pitch:  Pitch,
		Volume: Volume,
	}
	require.NoError(t, engine.Speak(context.Background(), u, emit))

	ev := nextEvent(t, events)
	assert.Equal(t, Event{Type: EventStarted, Utterance: 7}, ev)

	require.NoError(t, engine.Pause())
	assert.True(t, player.playback.paused)
	require.NoError(t, engine.Resume())
	assert.False(t, player.playback.paused)

	close(player.playback.release)
	ev = nextEvent(t, events)
	assert.Equal(t, EventEnded, ev.Type)

	assert.Equal(t, []string{"audio:Hallo"}, player.contents)
	require.Len(t, prov.opts, 1)
	opts := prov.opts[0]
	assert.Equal(t, "Laura", opts.Voice)
	assert.Equal(t, "nl-NL", opts.Language)
	assert.Equal(t, 1.5, opts.Rate)
	assert.Equal(t, 1.1, opts.Pitch)
	assert.Equal(t, 0.9, opts.Volume)
	assert.Equal(t, "mp3", opts.Format)
	assert.Equal(t, "neural", opts.Engine)
}

func TestSynthEngine_SynthesisFailure(t *testing.T) {
	prov := &fakeProvider{err: errors.New("throttled")}
	engine := NewSynthEngine(prov, &fakePlayer{started: make(chan struct{})}, provider.SynthesizeOptions{})
	emit, events := collectEvents()

	require.NoError(t, engine.Speak(context.Background(), Utterance{ID: 1, Text: "Hallo", Language: "nl-NL"}, emit))

	ev := nextEvent(t, events)
	assert.Equal(t, EventFailed, ev.Type)
	assert.Equal(t, ReasonSynthesis, ev.Reason)
	assert.EqualError(t, ev.Err, "throttled")
	assert.Equal(t, "nl-NL", prov.opts[0].Language)
}

func TestSynthEngine_Interrupted(t *testing.T) {
	player := &fakePlayer{started: make(chan struct{})}
	engine := NewSynthEngine(&fakeProvider{}, player, provider.SynthesizeOptions{})
	emit, events := collectEvents()

	ctx, cancel := context.WithCancelCause(context.Background())
	require.NoError(t, engine.Speak(ctx, Utterance{ID: 3, Text: "Hallo"}, emit))
	assert.Equal(t, EventStarted, nextEvent(t, events).Type)

	cancel(ErrInterrupted)
	engine.Cancel()

	ev := nextEvent(t, events)
	assert.Equal(t, EventFailed, ev.Type)
	assert.Equal(t, ReasonInterrupted, ev.Reason)
	assert.Equal(t, uint64(3), ev.Utterance)
}

func TestSynthEngine_RequiresProviderAndPlayer(t *testing.T) {
	emit, _ := collectEvents()
	assert.Error(t, NewSynthEngine(nil, &fakePlayer{}, provider.SynthesizeOptions{}).Speak(context.Background(), Utterance{}, emit))
	assert.ErrorIs(t, NewSynthEngine(&fakeProvider{}, nil, provider.SynthesizeOptions{}).Speak(context.Background(), Utterance{}, emit), ErrNoPlayer)
}

func TestAudioExtension(t *testing.T) {
	assert.Equal(t, "mp3", audioExtension(""))
	assert.Equal(t, "ogg", audioExtension("ogg"))
	assert.Equal(t, "pcm", audioExtension("pcm"))
}

package voice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Playback tuning
const (
	SettleDelay     = 200 * time.Millisecond
	ErrorClearDelay = 3 * time.Second
	Pitch           = 1.1
	Volume          = 0.9
	eventBuffer     = 16
)

// ErrStreaming is returned by Speak while the message is still being generated
var ErrStreaming = errors.New("cannot speak a message that is still streaming")

// Controller owns the speech state of the chat: the selected voice, the rate and
// the playback status. Engine events are applied by Run; events of an utterance
// that has been replaced or stopped are dropped.
type Controller struct {
	engine     Engine
	priorities []Priority
	preferred  string
	settle     time.Duration
	clearDelay time.Duration
	onChange   func(Status)

	events chan Event
	done   chan struct{}
	once   sync.Once

	mu         sync.Mutex
	catalog    []Voice
	best       *Voice
	rate       float64
	status     Status
	current    uint64
	text       string
	cancel     context.CancelCauseFunc
	clearTimer *time.Timer
	pending    []Status
}

// Option configures a Controller
type Option func(*Controller)

// WithSettleDelay sets the pause between cancelling and starting an utterance
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settle = d }
}

// WithClearDelay sets how long the error status is shown
func WithClearDelay(d time.Duration) Option {
	return func(c *Controller) { c.clearDelay = d }
}

// WithPriorities sets the voice selection order
func WithPriorities(p []Priority) Option {
	return func(c *Controller) { c.priorities = p }
}

// WithPreferredVoice selects the voice with this ID whenever the catalog has it
func WithPreferredVoice(id string) Option {
	return func(c *Controller) { c.preferred = id }
}

// WithRate sets the initial speaking rate
func WithRate(rate float64) Option {
	return func(c *Controller) {
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithStatusHook registers a callback for status changes.
// It is called without the controller lock held.
func WithStatusHook(fn func(Status)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller speaking through engine
func NewController(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:     engine,
		priorities: PrioritiesFor(nil),
		settle:     SettleDelay,
		clearDelay: ErrorClearDelay,
		rate:       1.0,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateCatalog replaces the available voices and selects the best one
func (c *Controller) UpdateCatalog(voices []Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = slices.Clone(voices)
	c.best = nil
	if c.preferred != "" {
		if i := slices.IndexFunc(c.catalog, func(v Voice) bool { return v.ID == c.preferred }); i >= 0 {
			c.best = &c.catalog[i]
		} else {
			log.Warn().Str("voice", c.preferred).Msg("Configured voice not in catalog, selecting automatically")
		}
	}
	if c.best == nil {
		c.best = SelectBest(c.catalog, c.priorities)
	}

	if c.best != nil {
		log.Debug().Str("voice", c.best.ID).Str("language", c.best.Language).Int("catalog", len(voices)).Msg("Selected voice")
	} else {
		log.Debug().Msg("No voices available, using locale hint")
	}
}

// Voice returns the selected voice, or nil when none is available
func (c *Controller) Voice() *Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.best == nil {
		return nil
	}
	v := *c.best
	return &v
}

// Status returns the current playback status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Rate returns the speaking rate
func (c *Controller) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Speak reads text aloud, replacing whatever is playing.
//
// Content that is still streaming is refused and empty text is ignored. The
// engine is started after the settle delay; ctx bounds the whole playback.
func (c *Controller) Speak(ctx context.Context, text string, streaming bool) error {
	if streaming {
		return ErrStreaming
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	gen := c.interruptLocked(ErrInterrupted)
	c.text = text
	c.unlock()

	if c.settle > 0 {
		timer := time.NewTimer(c.settle)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.unlock()
	if gen != c.current {
		log.Debug().Uint64("utterance", gen).Msg("Utterance replaced before start")
		return nil
	}
	return c.startLocked(ctx, gen, text)
}

// Toggle pauses a playing utterance, resumes a paused one, and otherwise speaks text
func (c *Controller) Toggle(ctx context.Context, text string, streaming bool) error {
	switch c.Status() {
	case StatusPlaying:
		return c.Pause()
	case StatusPaused:
		return c.Resume()
	default:
		return c.Speak(ctx, text, streaming)
	}
}

// Pause suspends playback
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.unlock()
	if c.status != StatusPlaying {
		return nil
	}
	if err := c.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	c.applyLocked(Event{Type: EventPaused, Utterance: c.current})
	return nil
}

// Resume continues paused playback
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.unlock()
	if c.status != StatusPaused {
		return nil
	}
	if err := c.engine.Resume(); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	c.applyLocked(Event{Type: EventResumed, Utterance: c.current})
	return nil
}

// Stop cancels playback and returns to idle
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.unlock()
	c.interruptLocked(context.Canceled)
}

// SetRate changes the speaking rate. A playing utterance restarts from the
// beginning at the new rate.
func (c *Controller) SetRate(ctx context.Context, rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("rate must be between %.2f and %.1f, got %.2f", MinRate, MaxRate, rate)
	}

	c.mu.Lock()
	c.rate = rate
	restart := c.status == StatusPlaying
	text := c.text
	c.unlock()

	log.Debug().Float64("rate", rate).Bool("restart", restart).Msg("Speech rate changed")
	if !restart {
		return nil
	}
	return c.Speak(ctx, text, false)
}

// Run applies engine events until ctx is done. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	defer c.once.Do(func() { close(c.done) })
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Controller) handle(ev Event) {
	c.mu.Lock()
	defer c.unlock()
	if ev.Utterance != c.current {
		log.Debug().Uint64("utterance", ev.Utterance).Stringer("event", ev.Type).Msg("Dropped stale speech event")
		return
	}
	c.applyLocked(ev)
}

// emit hands an engine event to Run
func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// interruptLocked cancels the current utterance with cause and starts a new generation
func (c *Controller) interruptLocked(cause error) uint64 {
	if c.cancel != nil {
		c.cancel(cause)
		c.cancel = nil
		c.engine.Cancel()
	}
	c.stopClearTimerLocked()
	if c.status != StatusIdle {
		c.applyLocked(Event{Type: EventStopped, Utterance: c.current})
	}
	c.current++
	return c.current
}

func (c *Controller) startLocked(ctx context.Context, gen uint64, text string) error {
	c.applyLocked(Event{Type: EventRequested, Utterance: gen})

	u := Utterance{
		ID:       gen,
		Text:     StripMarkdown(text),
		Language: DefaultLocale,
		Rate:     c.rate,
		Pitch:    Pitch,
		Volume:   Volume,
	}
	if c.best != nil {
		v := *c.best
		u.Voice = &v
		u.Language = v.Language
	}

	uctx, cancel := context.WithCancelCause(ctx)
	if err := c.engine.Speak(uctx, u, c.emit); err != nil {
		cancel(err)
		c.applyLocked(Event{Type: EventFailed, Utterance: gen, Reason: ReasonSynthesis, Err: err})
		return fmt.Errorf("failed to speak: %w", err)
	}
	c.cancel = cancel
	return nil
}

func (c *Controller) applyLocked(ev Event) {
	next, err := Next(c.status, ev)
	if err != nil {
		log.Debug().Err(err).Msg("Ignored speech event")
		return
	}
	if ev.Type == EventFailed {
		if next == StatusError {
			log.Warn().Err(ev.Err).Str("reason", ev.Reason).Msg("Speech failed")
		} else {
			log.Debug().Str("reason", ev.Reason).Msg("Speech cut short")
		}
	}
	if (next == StatusIdle || next == StatusError) && c.cancel != nil {
		c.cancel(nil)
		c.cancel = nil
	}
	if next == c.status {
		return
	}
	c.status = next
	c.pending = append(c.pending, next)

	if next == StatusError {
		gen := ev.Utterance
		c.stopClearTimerLocked()
		c.clearTimer = time.AfterFunc(c.clearDelay, func() {
			c.handle(Event{Type: EventCleared, Utterance: gen})
		})
	}
}

func (c *Controller) stopClearTimerLocked() {
	if c.clearTimer != nil {
		c.clearTimer.Stop()
		c.clearTimer = nil
	}
}

// unlock releases the lock and reports status changes made while it was held
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	if c.onChange == nil {
		return
	}
	for _, s := range pending {
		c.onChange(s)
	}
}

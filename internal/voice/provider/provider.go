package provider

import (
	"context"
	"io"
)

// Provider defines the interface for cloud TTS providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// ListVoices returns the voice catalog of this provider
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize generates audio from text and returns an audio stream
	Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error)

	// IsAvailable checks if the provider can be reached with the current credentials
	IsAvailable(ctx context.Context) bool
}

// Voice represents one entry of a voice catalog
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// SynthesizeOptions contains options for text synthesis
type SynthesizeOptions struct {
	Voice      string  `json:"voice,omitempty"`       // Voice ID; empty selects a default for Language
	Language   string  `json:"language,omitempty"`    // Locale hint, e.g. nl-NL
	Rate       float64 `json:"rate,omitempty"`        // Speaking rate multiplier, 1.0 is normal
	Pitch      float64 `json:"pitch,omitempty"`       // Pitch multiplier, 1.0 is normal
	Volume     float64 `json:"volume,omitempty"`      // Volume multiplier, 1.0 is normal
	Format     string  `json:"format,omitempty"`      // Output format (mp3, ogg, pcm)
	Engine     string  `json:"engine,omitempty"`      // Polly engine (standard, neural, generative)
	SampleRate string  `json:"sample_rate,omitempty"` // Sample rate in Hz
}

// Config carries the settings needed to construct a provider
type Config struct {
	Region    string `json:"region,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

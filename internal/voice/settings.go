package voice

import (
	"github.com/rs/zerolog/log"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/voice/provider"
)

// PersonaVoiceInput carries voice settings from a persona config,
// avoiding a direct import of the persona package.
type PersonaVoiceInput struct {
	Provider string
	Voice    string
	Rate     float64
	Locales  []string
}

// Overrides are the voice flags given on the command line
type Overrides struct {
	Provider string
	Voice    string
	Rate     float64
}

// Settings is the effective speech configuration
type Settings struct {
	Provider   string
	Voice      string
	Region     string
	ProjectID  string
	Engine     string
	Format     string
	SampleRate string
	Rate       float64
	Locales    []string
}

// DefaultSettings returns the built-in speech configuration
func DefaultSettings() Settings {
	return Settings{
		Provider:   provider.NamePolly,
		Region:     "eu-west-1",
		Engine:     "neural",
		Format:     "mp3",
		SampleRate: "22050",
		Rate:       1.0,
		Locales:    DefaultLocales,
	}
}

// Resolve merges all configuration sources into Settings.
//
// Priority (highest → lowest):
//  1. cli overrides
//  2. persona (PersonaVoiceInput)
//  3. fileConfig.Providers[effectiveProvider] (per-provider overrides)
//  4. fileConfig defaults (defaultProvider, rate, locales)
//  5. DefaultSettings() hard-coded values
func Resolve(persona PersonaVoiceInput, fileConfig *config.VoiceConfig, cli Overrides) Settings {
	s := DefaultSettings()

	// Layer 4: file defaults
	if fileConfig != nil {
		if fileConfig.DefaultProvider != "" {
			s.Provider = fileConfig.DefaultProvider
		}
		if fileConfig.Rate > 0 {
			s.Rate = fileConfig.Rate
		}
		if len(fileConfig.Locales) > 0 {
			s.Locales = fileConfig.Locales
		}
	}

	// The provider section to apply depends on the final provider choice
	if persona.Provider != "" {
		s.Provider = persona.Provider
	}
	if cli.Provider != "" {
		s.Provider = cli.Provider
	}

	// Layer 3: fileConfig.Providers[effectiveProvider]
	if provCfg := fileConfig.GetProviderConfig(s.Provider); provCfg != nil {
		if provCfg.Voice != "" {
			s.Voice = provCfg.Voice
		}
		if provCfg.Rate > 0 {
			s.Rate = provCfg.Rate
		}
		if provCfg.Format != "" {
			s.Format = provCfg.Format
		}
		if provCfg.Region != "" {
			s.Region = provCfg.Region
		}
		if provCfg.Engine != "" {
			s.Engine = provCfg.Engine
		}
		if provCfg.SampleRate != "" {
			s.SampleRate = provCfg.SampleRate
		}
		if provCfg.ProjectID != "" {
			s.ProjectID = provCfg.ProjectID
		}
	}

	// Layer 2: persona
	if persona.Voice != "" {
		s.Voice = persona.Voice
	}
	if persona.Rate > 0 {
		s.Rate = persona.Rate
	}
	if len(persona.Locales) > 0 {
		s.Locales = persona.Locales
	}

	// Layer 1: cli
	if cli.Voice != "" {
		s.Voice = cli.Voice
	}
	if cli.Rate > 0 {
		s.Rate = cli.Rate
	}

	log.Debug().
		Str("provider", s.Provider).
		Str("voice", s.Voice).
		Float64("rate", s.Rate).
		Strs("locales", s.Locales).
		Msg("Resolved voice config")

	return s
}

// ProviderConfig returns the settings needed to construct the provider
func (s Settings) ProviderConfig() provider.Config {
	return provider.Config{Region: s.Region, ProjectID: s.ProjectID}
}

// SynthesizeOptions returns the provider options shared by every utterance
func (s Settings) SynthesizeOptions() provider.SynthesizeOptions {
	return provider.SynthesizeOptions{
		Format:     s.Format,
		Engine:     s.Engine,
		SampleRate: s.SampleRate,
	}
}

// ControllerOptions returns the controller options implied by the settings
func (s Settings) ControllerOptions() []Option {
	opts := []Option{
		WithPriorities(PrioritiesFor(s.Locales)),
		WithRate(s.Rate),
	}
	if s.Voice != "" {
		opts = append(opts, WithPreferredVoice(s.Voice))
	}
	return opts
}

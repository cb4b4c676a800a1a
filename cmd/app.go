package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/persona"
	"github.com/daikw/sportsbot/internal/voice"
	"github.com/daikw/sportsbot/internal/voice/provider"
)

// app is what every command loads from the working directory
type app struct {
	cfg        *config.Config
	persona    persona.Persona
	personaCfg *persona.Config
}

func loadApp(c *cli.Command) (*app, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, err
	}

	personaCfg, err := persona.LoadConfigWithFallback()
	if err != nil {
		return nil, err
	}

	selected := personaCfg
	if id := c.String("persona"); id != "" {
		selected = &persona.Config{Name: persona.ID(id)}
		if personaCfg != nil {
			selected.Voice = personaCfg.Voice
		}
	}
	p, err := persona.Resolve(selected)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("persona", string(p.ID)).Str("llm", cfg.LLM.Provider).Msg("Loaded application config")
	return &app{cfg: cfg, persona: p, personaCfg: personaCfg}, nil
}

func voiceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "voice-provider",
			Usage: "Speech provider: polly, gcp",
		},
		&cli.StringFlag{
			Name:  "voice",
			Usage: "Voice ID (default: best voice for nl-NL, nl-BE, en-US)",
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Speaking rate (0.25-4.0)",
		},
	}
}

// voiceSettings resolves speech settings from config, persona and flags
func (a *app) voiceSettings(c *cli.Command) voice.Settings {
	return voice.Resolve(personaVoice(a.personaCfg), &a.cfg.Voice, voice.Overrides{
		Provider: c.String("voice-provider"),
		Voice:    c.String("voice"),
		Rate:     c.Float("rate"),
	})
}

func personaVoice(cfg *persona.Config) voice.PersonaVoiceInput {
	if cfg == nil || cfg.Voice == nil {
		return voice.PersonaVoiceInput{}
	}
	v := cfg.Voice
	return voice.PersonaVoiceInput{Provider: v.Provider, Voice: v.Voice, Rate: v.Rate, Locales: v.Locales}
}

// speech bundles a speech controller with its provider
type speech struct {
	ctrl     *voice.Controller
	provider provider.Provider
	settings voice.Settings
}

// newSpeech creates the provider, the player and a controller with the voice catalog loaded
func newSpeech(ctx context.Context, settings voice.Settings, opts ...voice.Option) (*speech, error) {
	if !provider.IsSupported(settings.Provider) {
		return nil, fmt.Errorf("unknown speech provider: %s (supported: %v)", settings.Provider, provider.Names())
	}
	prov, err := provider.New(ctx, settings.Provider, settings.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create speech provider: %w", err)
	}

	player, err := voice.DetectPlayer()
	if err != nil {
		return nil, err
	}

	engine := voice.NewSynthEngine(prov, player, settings.SynthesizeOptions())
	ctrl := voice.NewController(engine, append(settings.ControllerOptions(), opts...)...)

	voices, err := prov.ListVoices(ctx)
	if err != nil {
		log.Warn().Err(err).Str("provider", prov.Name()).Msg("Failed to list voices, using locale hint")
	}
	ctrl.UpdateCatalog(voices)

	return &speech{ctrl: ctrl, provider: prov, settings: settings}, nil
}

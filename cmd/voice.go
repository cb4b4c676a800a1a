package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/voice"
	"github.com/daikw/sportsbot/internal/voice/provider"
)

func handleVoices(ctx context.Context, c *cli.Command) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}
	settings := a.voiceSettings(c)

	prov, err := provider.New(ctx, settings.Provider, settings.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create speech provider: %w", err)
	}

	voices, err := prov.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	if len(voices) == 0 {
		fmt.Println("No voices available")
		return nil
	}

	var selected *voice.Voice
	if settings.Voice != "" {
		for i := range voices {
			if voices[i].ID == settings.Voice {
				selected = &voices[i]
				break
			}
		}
	}
	if selected == nil {
		selected = voice.SelectBest(voices, voice.PrioritiesFor(settings.Locales))
	}

	fmt.Printf("Available voices for provider '%s':\n", prov.Name())
	for _, v := range voices {
		marker := " "
		if selected != nil && v.ID == selected.ID {
			marker = "*"
		}
		fmt.Printf(" %s %-28s %-6s %s\n", marker, v.Name, v.Language, v.Gender)
	}
	if selected != nil {
		fmt.Printf("\nSelected: %s (%s)\n", selected.Name, selected.Language)
	}
	return nil
}

func handleSpeak(ctx context.Context, c *cli.Command) error {
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text provided")
	}

	a, err := loadApp(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	finished := make(chan voice.Status, 1)
	var started atomic.Bool
	sp, err := newSpeech(ctx, a.voiceSettings(c), voice.WithStatusHook(func(s voice.Status) {
		if s != voice.StatusIdle {
			started.Store(true)
		}
		if s == voice.StatusError || (s == voice.StatusIdle && started.Load()) {
			select {
			case finished <- s:
			default:
			}
		}
	}))
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() { runErr <- sp.ctrl.Run(ctx) }()

	if v := sp.ctrl.Voice(); v != nil {
		log.Debug().Str("voice", v.ID).Str("language", v.Language).Msg("Speaking")
	}
	fmt.Fprintf(os.Stderr, "📢 Reading text: %s\n", voice.StripMarkdown(text))

	if err := sp.ctrl.Speak(ctx, text, false); err != nil {
		return fmt.Errorf("failed to speak: %w", err)
	}

	select {
	case s := <-finished:
		if s == voice.StatusError {
			return fmt.Errorf("speech failed")
		}
		return nil
	case err := <-runErr:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// Configuration handlers

func handleConfigShow(ctx context.Context, c *cli.Command) error {
	workDir, _ := os.Getwd()
	cfg, err := config.Load(workDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	output, err := json.MarshalIndent(cfg.MaskSecrets(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	fmt.Println("Current configuration (secrets masked):")
	fmt.Println(string(output))
	return nil
}

func handleConfigValidate(ctx context.Context, c *cli.Command) error {
	workDir, _ := os.Getwd()
	cfg, err := config.NewLoader().LoadConfig(workDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	problems := cfg.Validate()
	if len(problems) == 0 {
		fmt.Println("✅ Configuration is valid.")
		return nil
	}

	fmt.Println("❌ Configuration has errors:")
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}
	return fmt.Errorf("configuration validation failed")
}

func handleConfigInit(ctx context.Context, c *cli.Command) error {
	configPath := filepath.Join(config.AppDir, config.ConfigFileName)
	if c.Bool("global") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, configPath)
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Secrets may be written inline, so keep the file private
	if err := os.WriteFile(configPath, []byte(config.GenerateExampleConfig()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("✅ Created configuration: %s\n", configPath)
	fmt.Println("\nUse ${ENV_VAR} syntax for API keys, or put them in a .env file.")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/persona"
	"github.com/daikw/sportsbot/internal/voice"
	"github.com/daikw/sportsbot/internal/voice/provider"
)

const providerCheckTimeout = 5 * time.Second

func handleStatus(ctx context.Context, c *cli.Command) error {
	issues := 0
	warnings := 0

	cwd, _ := os.Getwd()
	fmt.Printf("📍 Working directory: %s\n", cwd)
	fmt.Printf("✅ sportsbot version: %s (%s)\n", version, revision)

	cfg, err := config.Load(cwd)
	if err != nil {
		fmt.Printf("❌ Configuration: %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}
	fmt.Printf("✅ LLM provider: %s (default model %s)\n", cfg.LLM.Provider, cfg.LLM.ResolveModel(""))

	if _, err := cfg.LLM.Credential(); err != nil {
		fmt.Printf("⚠️  Credential: %v\n", err)
		warnings++
	} else {
		fmt.Println("✅ Credential: set")
	}

	projectConfig, _ := persona.LoadConfig(".")
	p, err := persona.Resolve(projectConfig)
	switch {
	case err != nil:
		fmt.Printf("❌ Persona: %v\n", err)
		issues++
	case projectConfig == nil:
		fmt.Printf("🎭 Persona: %s (default)\n", p.Name)
	default:
		fmt.Printf("🎭 Persona: %s\n", p.Name)
	}

	settings := voice.Resolve(personaVoice(projectConfig), &cfg.Voice, voice.Overrides{})

	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()
	speechOK := false
	prov, err := provider.New(checkCtx, settings.Provider, settings.ProviderConfig())
	switch {
	case err != nil:
		fmt.Printf("⚠️  Speech provider %s: %v\n", settings.Provider, err)
		warnings++
	case prov.IsAvailable(checkCtx):
		fmt.Printf("🔊 Speech provider %s: OK\n", prov.Name())
		speechOK = true
	default:
		fmt.Printf("⚠️  Speech provider %s: not reachable with the current credentials\n", prov.Name())
		warnings++
	}

	if player, err := voice.DetectPlayer(); err != nil {
		fmt.Printf("⚠️  Audio player: %v\n", err)
		warnings++
	} else {
		fmt.Printf("🔊 Audio player: %s\n", player.Command)
	}

	if issues > 0 || warnings > 0 {
		fmt.Println("")
		fmt.Println("Recommended actions:")
		if _, err := cfg.LLM.Credential(); err != nil {
			fmt.Println("  - Set the API key in the environment or a .env file")
		}
		if !speechOK {
			fmt.Println("  - Configure AWS or Google Cloud credentials for speech, or use the chat without it")
		}
		if issues > 0 {
			fmt.Println("  - Run 'sportsbot persona list' and 'sportsbot persona set <persona>'")
		}
	} else {
		fmt.Println("")
		fmt.Println("✅ All checks passed!")
	}

	if issues > 0 {
		return fmt.Errorf("%d problem(s) found", issues)
	}
	return nil
}

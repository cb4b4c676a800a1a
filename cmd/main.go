package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
)

var (
	version  = "dev"
	revision = "none"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:  "sportsbot",
		Usage: "Interview the marketing manager of a sports brand",
		Description: `sportsbot lets students interview a simulated marketing manager.
Replies are generated by a language model conditioned on the persona, streamed
token by token, and can be read aloud with a cloud speech provider.`,
		Version: fmt.Sprintf("%s (rev: %s)", version, revision),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable verbose logging",
			},
			&cli.StringFlag{
				Name:    "persona",
				Aliases: []string{"p"},
				Usage:   "Persona to talk to (overrides .sportsbot/persona.json)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the chat API server",
				Action: handleServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (default from config, " + config.DefaultAddr + ")",
					},
				},
			},
			{
				Name:    "chat",
				Aliases: []string{"c"},
				Usage:   "Start an interview in the terminal",
				Action:  handleChat,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "server",
						Usage: "Chat server URL (default from config, " + config.DefaultServerURL + ")",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Model alias sent with each request: smart, fast",
					},
					&cli.BoolFlag{
						Name:  "local",
						Usage: "Generate replies in-process instead of through a server",
					},
					&cli.BoolFlag{
						Name:  "autospeak",
						Usage: "Read every reply aloud",
					},
				}, voiceFlags()...),
			},
			{
				Name:   "persona",
				Usage:  "Manage the persona of this project",
				Action: handleShow,
				Commands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "List available personas",
						Action:  handleList,
					},
					{
						Name:      "show",
						Usage:     "Show a persona (default: the current one)",
						ArgsUsage: "[persona]",
						Action:    handleShow,
					},
					{
						Name:      "set",
						Usage:     "Select the persona for this project",
						ArgsUsage: "<persona>",
						Action:    handleSet,
					},
				},
			},
			{
				Name:   "voices",
				Usage:  "List the voices of the speech provider and the one that would be selected",
				Action: handleVoices,
				Flags:  voiceFlags(),
			},
			{
				Name:      "speak",
				Usage:     "Read text aloud (arguments or stdin)",
				ArgsUsage: "[text]",
				Action:    handleSpeak,
				Flags:     voiceFlags(),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the interview as MCP tools over stdio",
				Action: handleMCP,
			},
			{
				Name:  "config",
				Usage: "Manage configuration",
				Commands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the effective configuration (secrets masked)",
						Action: handleConfigShow,
					},
					{
						Name:   "validate",
						Usage:  "Validate the configuration files",
						Action: handleConfigValidate,
					},
					{
						Name:   "init",
						Usage:  "Create an example configuration file",
						Action: handleConfigInit,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:    "global",
								Aliases: []string{"g"},
								Usage:   "Create ~/.sportsbot/config.json instead of the project file",
							},
						},
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Check configuration, credentials and speech setup",
				Action: handleStatus,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/server"
)

func handleServe(ctx context.Context, c *cli.Command) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if a := c.String("addr"); a != "" {
		addr = a
	}
	if addr == "" {
		addr = config.DefaultAddr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.LLM).Run(ctx, addr)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/persona"
)

func handleList(ctx context.Context, c *cli.Command) error {
	current := persona.Default
	if cfg, err := persona.LoadConfigWithFallback(); err == nil && cfg != nil && cfg.Name != "" {
		current = cfg.Name
	}

	fmt.Println("Available personas:")
	for _, p := range persona.All() {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		fmt.Printf(" %s %s %-8s %s, %s\n", marker, p.Avatar, p.ID, p.Name, p.Title)
	}
	return nil
}

func handleShow(ctx context.Context, c *cli.Command) error {
	var p persona.Persona
	var err error

	if id := c.Args().Get(0); id != "" {
		p, err = persona.Lookup(persona.ID(id))
	} else {
		var a *app
		a, err = loadApp(c)
		if a != nil {
			p = a.persona
		}
	}
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%s %s\n", p.Avatar, p.Name)
	fmt.Printf("%s (%s, %s)\n\n", p.Title, p.Brand, p.Sport)
	fmt.Println(p.Description)
	fmt.Println()

	bold.Println("Persoonlijkheid")
	fmt.Println(p.Personality)
	fmt.Println()

	printList(bold, "Expertise", p.Expertise)
	printList(bold, "Merkfeiten", p.BrandFacts)
	printList(bold, "Voorbeeldvragen", p.SuggestedQuestions)
	return nil
}

func printList(heading *color.Color, title string, items []string) {
	if len(items) == 0 {
		return
	}
	heading.Println(title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
	fmt.Println()
}

func handleSet(ctx context.Context, c *cli.Command) error {
	id := strings.TrimSpace(c.Args().Get(0))
	if id == "" {
		return fmt.Errorf("persona name is required")
	}

	config, err := persona.LoadConfig(".")
	if err != nil {
		return err
	}
	if config == nil {
		config = persona.GetDefaultConfig()
	}
	config.Name = persona.ID(id)

	if err := persona.ValidateConfig(config); err != nil {
		return err
	}
	if err := persona.SaveConfig(".", config); err != nil {
		return err
	}

	p, err := persona.Lookup(config.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Set active persona to: %s (%s)\n", p.ID, p.Name)
	return nil
}

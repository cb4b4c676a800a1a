package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/sportsbot/internal/config"
	"github.com/daikw/sportsbot/internal/conversation"
	"github.com/daikw/sportsbot/internal/llm"
	"github.com/daikw/sportsbot/internal/stream"
	"github.com/daikw/sportsbot/internal/voice"
)

var (
	personaColor = color.New(color.FgCyan, color.Bold)
	userColor    = color.New(color.FgGreen, color.Bold)
	hintColor    = color.New(color.Faint)
	errorColor   = color.New(color.FgRed)
)

const chatHelp = `Commands:
  /speak         Read the last reply aloud (again)
  /pause         Pause speech
  /resume        Resume speech
  /stop          Stop speech
  /rate <rate>   Set the speaking rate (Langzaam, Normaal, Snel, Allersnelst or 0.25-4.0)
  /voices        Show the selected voice
  /copy          Copy the last reply to the clipboard
  /reset         Start a new conversation
  /help          Show this help
  /quit          Leave the interview
Type a number to ask one of the suggested questions. Ctrl-C stops a reply that is being generated.`

// chat is one interactive interview in the terminal
type chat struct {
	app       *app
	cmd       *cli.Command
	session   *conversation.Session
	autospeak bool
	speech    *speech
}

func handleChat(ctx context.Context, c *cli.Command) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}

	streamer, err := newChatStreamer(ctx, c, a.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := &chat{
		app:       a,
		cmd:       c,
		session:   conversation.NewSession(conversation.NewState(a.persona), streamer),
		autospeak: c.Bool("autospeak"),
	}
	defer ch.stopSpeech()

	// Ctrl-C cancels the reply in flight, or leaves when idle
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if ch.session.Cancel() {
				continue
			}
			cancel()
			return
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	ch.printWelcome()
	for {
		userColor.Print("> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok = <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := ch.command(ctx, line); quit {
				return nil
			}
			continue
		}
		ch.ask(ctx, ch.expandSuggestion(line))
	}
}

// newChatStreamer returns the HTTP client, or an in-process generator with --local
func newChatStreamer(ctx context.Context, c *cli.Command, cfg *config.Config) (conversation.Streamer, error) {
	model := cfg.Client.Model
	if m := c.String("model"); m != "" {
		model = m
	}

	if c.Bool("local") {
		gen, err := llm.New(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		resolved := cfg.LLM.ResolveModel(model)
		log.Debug().Str("provider", gen.Name()).Str("model", resolved).Msg("Generating replies in-process")
		return llm.NewStreamer(gen, resolved), nil
	}

	serverURL := cfg.Client.ServerURL
	if u := c.String("server"); u != "" {
		serverURL = u
	}
	if serverURL == "" {
		serverURL = config.DefaultServerURL
	}
	log.Debug().Str("server", serverURL).Str("model", model).Msg("Using chat server")
	return stream.NewClient(serverURL, stream.WithModel(model)), nil
}

func (ch *chat) printWelcome() {
	p := ch.session.State().Persona()
	messages := ch.session.State().Messages()

	personaColor.Printf("%s %s\n", p.Avatar, p.Name)
	hintColor.Println(p.Title)
	fmt.Println()
	if len(messages) > 0 {
		fmt.Println(messages[0].Content)
		fmt.Println()
	}
	if len(p.SuggestedQuestions) > 0 {
		hintColor.Println("Voorbeeldvragen:")
		for i, q := range p.SuggestedQuestions {
			hintColor.Printf("  %d. %s\n", i+1, q)
		}
		fmt.Println()
	}
	hintColor.Println("Type /help for commands.")
}

// expandSuggestion replaces a suggested question number with the question
func (ch *chat) expandSuggestion(line string) string {
	questions := ch.session.State().Persona().SuggestedQuestions
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(questions) {
		q := questions[n-1]
		userColor.Print("> ")
		fmt.Println(q)
		return q
	}
	return line
}

// ask sends text and prints the reply as it streams in
func (ch *chat) ask(ctx context.Context, text string) {
	name := ch.session.State().Persona().Name
	hintColor.Printf("%s denkt na...", name)

	started := false
	printed := 0
	msg, err := ch.session.Send(ctx, text, func(partial string) {
		if !started {
			started = true
			fmt.Print("\r\033[K")
			personaColor.Printf("%s: ", name)
		}
		if len(partial) > printed {
			fmt.Print(partial[printed:])
			printed = len(partial)
		}
	})
	if !started {
		fmt.Print("\r\033[K")
	}

	switch {
	case err == nil:
		if !started {
			personaColor.Printf("%s: ", name)
			fmt.Print(msg.Content)
		} else if len(msg.Content) > printed {
			fmt.Print(msg.Content[printed:])
		}
		fmt.Println()
		fmt.Println()
		if ch.autospeak {
			ch.speak(ctx)
		}
	case stream.IsCanceled(err):
		if started {
			fmt.Println()
		}
		hintColor.Println("(geannuleerd)")
	case errors.Is(err, conversation.ErrBusy), stream.IsValidation(err):
		if started {
			fmt.Println()
		}
		errorColor.Println(err)
	default:
		if started {
			fmt.Println()
		}
		if msg.Content != "" {
			personaColor.Printf("%s: ", name)
			errorColor.Println(msg.Content)
		} else {
			errorColor.Println(err)
		}
		fmt.Println()
	}
}

// command runs a slash command and reports whether the chat should end
func (ch *chat) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println(chatHelp)
	case "/reset":
		ch.stopSpeech()
		ch.session.Reset()
		fmt.Println()
		ch.printWelcome()
	case "/speak":
		ch.speak(ctx)
	case "/pause":
		ch.withSpeech(ctx, func(sp *speech) error { return sp.ctrl.Pause() })
	case "/resume":
		ch.withSpeech(ctx, func(sp *speech) error { return sp.ctrl.Resume() })
	case "/stop":
		ch.stopSpeech()
	case "/rate":
		ch.setRate(ctx, arg)
	case "/voices":
		ch.withSpeech(ctx, func(sp *speech) error {
			if v := sp.ctrl.Voice(); v != nil {
				fmt.Printf("Stem: %s (%s, %s)\n", v.Name, v.ID, v.Language)
			} else {
				fmt.Println("Stem: standaard")
			}
			fmt.Printf("Snelheid: %s\n", voice.RateLabel(sp.ctrl.Rate()))
			return nil
		})
	case "/copy":
		ch.copyLast()
	default:
		errorColor.Printf("Unknown command: %s (try /help)\n", name)
	}
	return false
}

func (ch *chat) lastReply() (string, bool) {
	msg, ok := ch.session.State().LastAssistant()
	if !ok || strings.TrimSpace(msg.Content) == "" {
		return "", false
	}
	return msg.Content, true
}

func (ch *chat) speak(ctx context.Context) {
	text, ok := ch.lastReply()
	if !ok {
		hintColor.Println("Nothing to read aloud")
		return
	}
	streaming := ch.session.State().Streaming()
	ch.withSpeech(ctx, func(sp *speech) error {
		return sp.ctrl.Speak(ctx, text, streaming)
	})
}

func (ch *chat) setRate(ctx context.Context, arg string) {
	if arg == "" {
		var labels []string
		for _, p := range voice.RatePresets {
			labels = append(labels, voice.RateLabel(p.Rate))
		}
		fmt.Println("Rates: " + strings.Join(labels, ", "))
		return
	}
	rate, err := voice.ParseRate(arg)
	if err != nil {
		errorColor.Println(err)
		return
	}
	ch.withSpeech(ctx, func(sp *speech) error {
		if err := sp.ctrl.SetRate(ctx, rate); err != nil {
			return err
		}
		fmt.Printf("Snelheid: %s\n", voice.RateLabel(rate))
		return nil
	})
}

func (ch *chat) copyLast() {
	if ch.session.State().Streaming() {
		hintColor.Println("Wait until the reply is complete")
		return
	}
	text, ok := ch.lastReply()
	if !ok {
		hintColor.Println("Nothing to copy")
		return
	}
	plain := voice.StripMarkdown(text)
	if err := clipboard.WriteAll(plain); err != nil {
		errorColor.Printf("Failed to copy: %v\n", err)
		return
	}
	hintColor.Printf("Copied %d characters\n", utf8.RuneCountInString(plain))
}

// withSpeech runs fn with the speech controller, creating it on first use
func (ch *chat) withSpeech(ctx context.Context, fn func(*speech) error) {
	if ch.speech == nil {
		settings := ch.app.voiceSettings(ch.cmd)
		sp, err := newSpeech(ctx, settings, voice.WithStatusHook(func(s voice.Status) {
			log.Debug().Str("status", s.String()).Msg("Speech status")
		}))
		if err != nil {
			errorColor.Printf("Speech unavailable: %v\n", err)
			return
		}
		go func() {
			if err := sp.ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("Speech controller stopped")
			}
		}()
		ch.speech = sp
	}

	if err := fn(ch.speech); err != nil {
		errorColor.Println(err)
	}
}

func (ch *chat) stopSpeech() {
	if ch.speech != nil {
		ch.speech.ctrl.Stop()
	}
}

package voice

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoPlayer is returned when no audio player command is installed
	ErrNoPlayer = errors.New("no audio player found (install afplay, ffplay, mpg123 or mpv)")

	// ErrPauseUnsupported is returned by playbacks that cannot be suspended
	ErrPauseUnsupported = errors.New("pausing playback is not supported on this platform")
)

// Playback is one running audio playback
type Playback interface {
	Wait() error
	Pause() error
	Resume() error
	Stop() error
}

// Player starts playback of audio files
type Player interface {
	Start(ctx context.Context, path string) (Playback, error)
}

// ExecPlayer plays audio files through an external command
type ExecPlayer struct {
	Command string
	Args    []string
}

var knownPlayers = []ExecPlayer{
	{Command: "afplay"},
	{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{Command: "mpg123", Args: []string{"-q"}},
	{Command: "mpv", Args: []string{"--no-video", "--really-quiet"}},
}

// DetectPlayer returns the first audio player found on PATH
func DetectPlayer() (*ExecPlayer, error) {
	for _, p := range knownPlayers {
		if isCommandAvailable(p.Command) {
			log.Debug().Str("player", p.Command).Msg("Using audio player")
			player := p
			return &player, nil
		}
	}
	return nil, ErrNoPlayer
}

// Start launches the player command for path
func (p *ExecPlayer) Start(ctx context.Context, path string) (Playback, error) {
	args := append(append([]string{}, p.Args...), path)
	cmd := exec.CommandContext(ctx, p.Command, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", p.Command, err)
	}
	return &execPlayback{cmd: cmd}, nil
}

type execPlayback struct {
	cmd *exec.Cmd
}

func (p *execPlayback) Wait() error {
	return p.cmd.Wait()
}

func (p *execPlayback) Pause() error {
	return pauseProcess(p.cmd.Process)
}

func (p *execPlayback) Resume() error {
	return resumeProcess(p.cmd.Process)
}

func (p *execPlayback) Stop() error {
	return p.cmd.Process.Kill()
}

func isCommandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

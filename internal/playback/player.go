package playback

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrUnsupportedPlatform = errors.New("playback: unsupported platform")
	ErrNoPlayer            = errors.New("playback: no working audio player")
)

type Player interface {
	Play(ctx context.Context, path string) error
}

// Runner executes one command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// chainPlayer tries each candidate command in order until one succeeds.
type chainPlayer struct {
	candidates func(path string) [][]string
	run        Runner
	log        *zap.Logger
}

// NewPlayer picks the implementation for goos (usually runtime.GOOS).
func NewPlayer(goos string, log *zap.Logger) (Player, error) {
	return newPlayer(goos, execRunner, log)
}

func newPlayer(goos string, run Runner, log *zap.Logger) (Player, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var candidates func(string) [][]string
	switch goos {
	case "darwin":
		candidates = darwinCommands
	case "windows":
		candidates = windowsCommands
	case "linux":
		candidates = linuxCommands
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}

	return &chainPlayer{candidates: candidates, run: run, log: log.Named("playback")}, nil
}

func (p *chainPlayer) Play(ctx context.Context, path string) error {
	var errs []error
	for _, cmd := range p.candidates(path) {
		err := p.run(ctx, cmd[0], cmd[1:]...)
		if err == nil {
			p.log.Info("played", zap.String("player", cmd[0]), zap.String("path", path))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Debug("player failed", zap.String("player", cmd[0]), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", cmd[0], err))
	}
	return fmt.Errorf("%w: %w", ErrNoPlayer, errors.Join(errs...))
}

func darwinCommands(path string) [][]string {
	return [][]string{{"afplay", path}}
}

func windowsCommands(path string) [][]string {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		return [][]string{{"powershell", "-c",
			fmt.Sprintf(`(New-Object -ComObject WMPlayer.OCX).openPlayer("%s")`, abs)}}
	}
	return [][]string{{"powershell", "-c",
		fmt.Sprintf(`(New-Object Media.SoundPlayer "%s").PlaySync();`, path)}}
}

func linuxCommands(path string) [][]string {
	return [][]string{
		{"aplay", path},
		{"mpg123", path},
		{"ffplay", "-nodisp", "-autoexit", path},
	}
}

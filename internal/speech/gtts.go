package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"golang.org/x/time/rate"
)

const (
	DefaultFallbackCommand  = "gtts-cli"
	DefaultFallbackLanguage = "en"

	defaultFallbackRPM = 50
)

type GTTSConfig struct {
	// Command may carry extra arguments, e.g. "python3 -m gtts.cli".
	Command           string
	RequestsPerMinute int
}

// GTTSEngine shells out to gtts-cli. The text goes through stdin so that
// long answers and leading dashes never reach the argument list.
type GTTSEngine struct {
	cmd     []string
	limiter *rate.Limiter
}

func NewGTTSEngine(cfg GTTSConfig) (*GTTSEngine, error) {
	if cfg.Command == "" {
		cfg.Command = DefaultFallbackCommand
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultFallbackRPM
	}

	args, err := shellwords.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse fallback tts command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("fallback tts command is empty")
	}

	return &GTTSEngine{
		cmd:     args,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}, nil
}

func (e *GTTSEngine) SynthesizeToFile(ctx context.Context, text, lang string, slow bool, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidInput
	}
	if lang == "" {
		lang = DefaultFallbackLanguage
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("fallback rate limit: %w", err)
	}

	args := append([]string{}, e.cmd[1:]...)
	args = append(args, "-", "-l", lang)
	if slow {
		args = append(args, "--slow")
	}
	args = append(args, "-o", outPath)

	cmd := exec.CommandContext(ctx, e.cmd[0], args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w, stderr: %s", e.cmd[0], err, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%s left no output: %w", e.cmd[0], err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s produced an empty file", e.cmd[0])
	}
	return nil
}

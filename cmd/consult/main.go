package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/quickcare/internal/app"
	"github.com/Vovarama1992/quickcare/internal/config"
	"github.com/Vovarama1992/quickcare/internal/consult"
	"github.com/Vovarama1992/quickcare/internal/playback"
)

var (
	play    bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "consult",
	Short:         "Voice consultations from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var speakCmd = &cobra.Command{
	Use:   "speak TEXT",
	Short: "Synthesize TEXT to an mp3 in OUTPUT_DIR",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, log *zap.Logger) error {
			c, err := a.Consult.Speak(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.AudioPath, c.Provider)
			return playIfAsked(ctx, c, log)
		})
	},
}

var (
	audioPath string
	imagePath string
)

var askCmd = &cobra.Command{
	Use:   "ask --audio FILE [--image FILE]",
	Short: "Run a full consultation on a recorded question",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, log *zap.Logger) error {
			c, err := a.Consult.Process(ctx, consult.Input{AudioPath: audioPath, ImagePath: imagePath})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Patient: %s\n\nDoctor: %s\n", c.Transcript, c.Response)
			if !c.HasAudio() {
				fmt.Fprintln(out, "\n(no audio available)")
				return nil
			}
			fmt.Fprintf(out, "\nAudio: %s (%s)\n", c.AudioPath, c.Provider)
			return playIfAsked(ctx, c, log)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&play, "play", "p", false, "play the generated audio")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	askCmd.Flags().StringVar(&audioPath, "audio", "", "recorded question")
	askCmd.Flags().StringVar(&imagePath, "image", "", "image to analyze")
	_ = askCmd.MarkFlagRequired("audio")

	rootCmd.AddCommand(speakCmd, askCmd)
}

func withApp(cmd *cobra.Command, fn func(context.Context, *app.App, *zap.Logger) error) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	log := zap.NewNop()
	if verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer log.Sync()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(cmd.Context(), a, log)
}

func playIfAsked(ctx context.Context, c *consult.Consultation, log *zap.Logger) error {
	if !play {
		return nil
	}
	p, err := playback.NewPlayer(runtime.GOOS, log)
	if err != nil {
		return err
	}
	return p.Play(ctx, c.AudioPath)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

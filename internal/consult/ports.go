package consult

import (
	"context"

	"github.com/Vovarama1992/quickcare/internal/speech"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type VisionAnalyzer interface {
	Analyze(ctx context.Context, query, imagePath string) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outputPathHint string) (speech.Result, error)
}

type Notifier interface {
	Notify(ctx context.Context, err error, details string) error
}

// DurationFunc reports an artifact's length in seconds.
type DurationFunc func(ctx context.Context, path string) (float64, error)

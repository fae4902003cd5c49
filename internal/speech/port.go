package speech

import "context"

// PrimaryClient is the hosted voice-synthesis provider. It returns the raw
// audio body; persisting it is the Synthesizer's job.
type PrimaryClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// FallbackEngine is the local synthesis path. It must leave a non-empty file
// at outPath on success.
type FallbackEngine interface {
	SynthesizeToFile(ctx context.Context, text, lang string, slow bool, outPath string) error
}

// STTClient turns a recorded clip into text.
type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

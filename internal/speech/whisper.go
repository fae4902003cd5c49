package speech

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultWhisperModel = "whisper-large-v3"

// WhisperTranscriber talks to any OpenAI-compatible transcription endpoint
// (Groq in production).
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

func NewWhisperTranscriber(apiKey, baseURL, model, language string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultWhisperModel
	}

	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, filePath string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filePath,
		Language: w.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

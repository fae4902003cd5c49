package speech

import (
	"context"
)

// === STT + TTS behind one service ===

type Service struct {
	stt STTClient
	tts *Synthesizer
}

func NewService(stt STTClient, tts *Synthesizer) *Service {
	return &Service{
		stt: stt,
		tts: tts,
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	return s.stt.Transcribe(ctx, filePath)
}

func (s *Service) Synthesize(ctx context.Context, text, outPath string) (Result, error) {
	return s.tts.Synthesize(ctx, text, outPath)
}

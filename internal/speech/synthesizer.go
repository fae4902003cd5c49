package speech

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type Provider int

const (
	ProviderPrimary Provider = iota
	ProviderFallback
)

func (p Provider) String() string {
	switch p {
	case ProviderPrimary:
		return "primary"
	case ProviderFallback:
		return "fallback"
	}
	return "unknown"
}

// Result describes one Synthesize call. ArtifactPath is set only when Success
// is true. PrimaryErr keeps the absorbed primary failure for diagnostics.
type Result struct {
	Success      bool
	ArtifactPath string
	Provider     Provider
	PrimaryErr   error
}

type Synthesizer struct {
	primary  PrimaryClient
	fallback FallbackEngine
	language string
	now      func() time.Time
	log      *zap.Logger
}

type Option func(*Synthesizer)

func WithFallbackLanguage(lang string) Option {
	return func(s *Synthesizer) {
		if lang != "" {
			s.language = lang
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

func NewSynthesizer(primary PrimaryClient, fallback FallbackEngine, log *zap.Logger, opts ...Option) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Synthesizer{
		primary:  primary,
		fallback: fallback,
		language: DefaultFallbackLanguage,
		now:      time.Now,
		log:      log.Named("tts"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize tries the primary provider once and, on any primary failure,
// the fallback engine once. The returned error is nil, ErrInvalidInput, or a
// *SynthesisError; primary errors never surface here. A failed call leaves
// no files or directories behind.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPathHint string) (Result, error) {
	if strings.TrimSpace(text) == "" || outputPathHint == "" {
		return Result{}, ErrInvalidInput
	}

	log := s.log.With(zap.String("hint", outputPathHint), zap.Int("chars", len(text)))
	created := missingDirs(outputPathHint)

	size, primaryErr := s.tryPrimary(ctx, text, outputPathHint)
	if primaryErr == nil {
		log.Info("audio saved",
			zap.String("provider", ProviderPrimary.String()),
			zap.String("size", humanize.Bytes(uint64(size))))
		return Result{Success: true, ArtifactPath: outputPathHint, Provider: ProviderPrimary}, nil
	}
	s.logPrimaryFailure(log, primaryErr)

	path, err := s.tryFallback(ctx, text, outputPathHint)
	if err != nil {
		log.Error("fallback synthesis failed, no audio", zap.Error(err))
		removeEmptyDirs(created)
		return Result{Provider: ProviderFallback, PrimaryErr: primaryErr}, err
	}

	log.Info("audio saved",
		zap.String("provider", ProviderFallback.String()),
		zap.String("path", path))
	return Result{Success: true, ArtifactPath: path, Provider: ProviderFallback, PrimaryErr: primaryErr}, nil
}

func (s *Synthesizer) tryPrimary(ctx context.Context, text, path string) (int, error) {
	audio, err := s.primary.Synthesize(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(audio) == 0 {
		return 0, &ProviderError{StatusCode: 200, Err: errEmptyAudio}
	}
	if err := ensureDir(path); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return len(audio), nil
}

func (s *Synthesizer) tryFallback(ctx context.Context, text, hint string) (string, error) {
	path, err := reserveUniquePath(hint, s.now())
	if err != nil {
		return "", &SynthesisError{Err: err}
	}

	if err := s.fallback.SynthesizeToFile(ctx, text, s.language, false, path); err != nil {
		_ = os.Remove(path)
		return "", &SynthesisError{Path: path, Err: err}
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		_ = os.Remove(path)
		return "", &SynthesisError{Path: path, Err: errors.New("fallback engine left no audio")}
	}
	return path, nil
}

func (s *Synthesizer) logPrimaryFailure(log *zap.Logger, err error) {
	var provErr *ProviderError
	var transErr *TransportError

	switch {
	case errors.As(err, &provErr):
		log.Warn("primary tts rejected request, falling back",
			zap.Int("status", provErr.StatusCode),
			zap.String("body", provErr.Body),
			zap.Error(provErr.Err))
	case errors.As(err, &transErr):
		log.Warn("primary tts unreachable, falling back", zap.Error(transErr.Err))
	default:
		log.Warn("primary tts failed, falling back", zap.Error(err))
	}
}

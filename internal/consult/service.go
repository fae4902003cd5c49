package consult

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/quickcare/internal/ports"
	"github.com/Vovarama1992/quickcare/internal/speech"
)

var ErrNoAudio = errors.New("consult: audio recording is required")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Config struct {
	OutputDir string
	// AudioURLPrefix is joined with the artifact's base name when the file
	// is served locally rather than from object storage.
	AudioURLPrefix string
	Duration       DurationFunc
}

type Input struct {
	AudioPath string
	ImagePath string
}

type Consultation struct {
	ID              string    `json:"id"`
	Transcript      string    `json:"transcript"`
	Response        string    `json:"response"`
	AudioPath       string    `json:"-"`
	AudioURL        string    `json:"audio_url,omitempty"`
	Provider        string    `json:"provider,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasAudio is false when both TTS providers failed.
func (c *Consultation) HasAudio() bool {
	return c.AudioPath != ""
}

type Service struct {
	cfg       Config
	stt       Transcriber
	vision    VisionAnalyzer
	tts       SpeechSynthesizer
	artifacts ports.ArtifactService
	repo      ports.ConsultationRepo
	notifier  Notifier
	newID     func() string
	log       *zap.Logger
}

// artifacts may be nil: audio is then only served from OutputDir.
func NewService(
	cfg Config,
	stt Transcriber,
	vision VisionAnalyzer,
	tts SpeechSynthesizer,
	artifacts ports.ArtifactService,
	repo ports.ConsultationRepo,
	notifier Notifier,
	log *zap.Logger,
) *Service {
	if cfg.AudioURLPrefix == "" {
		cfg.AudioURLPrefix = "/audio/"
	}
	if cfg.Duration == nil {
		cfg.Duration = speech.AudioDuration
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		stt:       stt,
		vision:    vision,
		tts:       tts,
		artifacts: artifacts,
		repo:      repo,
		notifier:  notifier,
		newID:     uuid.NewString,
		log:       log.Named("consult"),
	}
}

// Process runs transcription, image analysis and speech synthesis for one
// request. Synthesis failures leave the consultation without audio but never
// fail the call.
func (s *Service) Process(ctx context.Context, in Input) (*Consultation, error) {
	if in.AudioPath == "" {
		return nil, ErrNoAudio
	}

	start := time.Now()
	c := &Consultation{ID: s.newID(), CreatedAt: start.UTC()}
	log := s.log.With(zap.String("consultation", c.ID))

	transcript, err := s.stt.Transcribe(ctx, in.AudioPath)
	if err != nil {
		s.notify(ctx, err, "transcription failed, consultation "+c.ID)
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	c.Transcript = transcript

	c.Response = noImageResponse
	if in.ImagePath != "" {
		reply, err := s.vision.Analyze(ctx, systemPrompt+" "+transcript, in.ImagePath)
		if err != nil {
			s.notify(ctx, err, "image analysis failed, consultation "+c.ID)
			return nil, fmt.Errorf("analyze image: %w", err)
		}
		c.Response = reply
	}

	if err := s.voice(ctx, c); err != nil {
		log.Warn("consultation has no audio", zap.Error(err))
		if !errors.Is(err, speech.ErrInvalidInput) {
			s.notify(ctx, err, "speech synthesis failed, consultation "+c.ID)
		}
	}

	s.save(ctx, c, in.ImagePath != "")

	log.Info("consultation done",
		zap.Bool("image", in.ImagePath != ""),
		zap.Bool("audio", c.HasAudio()),
		zap.String("provider", c.Provider),
		zap.Duration("took", time.Since(start)))
	return c, nil
}

// Speak voices arbitrary text. Unlike Process, a synthesis failure is the
// call's error since audio is the only output.
func (s *Service) Speak(ctx context.Context, text string) (*Consultation, error) {
	c := &Consultation{ID: s.newID(), Response: text, CreatedAt: time.Now().UTC()}
	if err := s.voice(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]ports.ConsultationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// voice synthesizes c.Response into a request-scoped file so concurrent
// requests never share a primary output path.
func (s *Service) voice(ctx context.Context, c *Consultation) error {
	hint := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_%s.mp3", responseFilename, c.ID))

	res, err := s.tts.Synthesize(ctx, c.Response, hint)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New("synthesis returned no artifact")
	}

	c.AudioPath = res.ArtifactPath
	c.Provider = res.Provider.String()
	c.AudioURL = strings.TrimSuffix(s.cfg.AudioURLPrefix, "/") + "/" + filepath.Base(res.ArtifactPath)

	log := s.log.With(zap.String("consultation", c.ID))
	if s.artifacts != nil {
		url, err := s.artifacts.SaveAudio(ctx, c.ID, res.ArtifactPath)
		if err != nil {
			log.Warn("artifact upload failed, serving locally", zap.Error(err))
		} else {
			c.AudioURL = url
		}
	}

	if d, err := s.cfg.Duration(ctx, res.ArtifactPath); err == nil {
		c.DurationSeconds = d
	} else {
		log.Debug("audio duration unavailable", zap.Error(err))
	}
	return nil
}

func (s *Service) save(ctx context.Context, c *Consultation, hasImage bool) {
	rec := ports.ConsultationRecord{
		ID:              c.ID,
		Transcript:      c.Transcript,
		Response:        c.Response,
		HasImage:        hasImage,
		DurationSeconds: c.DurationSeconds,
		CreatedAt:       c.CreatedAt,
	}
	if c.HasAudio() {
		rec.AudioURL = &c.AudioURL
		rec.Provider = &c.Provider
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Error("save consultation", zap.String("consultation", c.ID), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, err error, details string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Notify(ctx, err, details)
}

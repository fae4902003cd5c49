package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Vovarama1992/quickcare/internal/ai"
	"github.com/Vovarama1992/quickcare/internal/config"
	"github.com/Vovarama1992/quickcare/internal/consult"
	"github.com/Vovarama1992/quickcare/internal/domain"
	"github.com/Vovarama1992/quickcare/internal/error_notificator"
	"github.com/Vovarama1992/quickcare/internal/infra"
	"github.com/Vovarama1992/quickcare/internal/ports"
	"github.com/Vovarama1992/quickcare/internal/speech"
)

const memoryHistory = 200

// App holds the wired services shared by the server and the CLI.
type App struct {
	Consult *consult.Service
	Speech  *speech.Service

	db *sql.DB
}

// New wires every dependency from cfg. Optional backends (Postgres, S3,
// Telegram) are skipped when their settings are empty.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{}

	// --- admin notifications ---
	var notifInfra error_notificator.Notificator = error_notificator.Nop{}
	if cfg.Telegram.Enabled() {
		tg, err := error_notificator.NewTelegramInfra(cfg.Telegram.BotToken, cfg.Telegram.AdminChatIDs)
		if err != nil {
			log.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			notifInfra = tg
		}
	}
	notifier := error_notificator.NewService(notifInfra, log)

	// --- storage ---
	repo, err := a.consultationRepo(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	var artifacts ports.ArtifactService
	if cfg.S3.Enabled() {
		s3, err := infra.NewS3Client(ctx, infra.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Secure:    cfg.S3.Secure,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init s3: %w", err)
		}
		artifacts = domain.NewS3Service(s3)
	}

	// --- speech ---
	stt, err := newTranscriber(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	gtts, err := speech.NewGTTSEngine(speech.GTTSConfig{
		Command:           cfg.Fallback.Command,
		RequestsPerMinute: cfg.Fallback.RequestsPerMinute,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	voice := cfg.ElevenLabs.VoiceSettings()
	eleven := speech.NewElevenLabsClient(speech.ElevenLabsConfig{
		APIKey:     cfg.ElevenLabs.APIKey,
		BaseURL:    cfg.ElevenLabs.BaseURL,
		VoiceID:    cfg.ElevenLabs.VoiceID,
		ModelID:    cfg.ElevenLabs.ModelID,
		Settings:   &voice,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	})
	if cfg.ElevenLabs.APIKey == "" {
		log.Warn("ELEVENLABS_API_KEY is empty, every answer will be voiced by the fallback engine")
	}

	synth := speech.NewSynthesizer(eleven, gtts, log, speech.WithFallbackLanguage(cfg.Fallback.Language))
	a.Speech = speech.NewService(stt, synth)

	// --- vision ---
	vision := ai.NewService(ai.NewOpenAIClient(cfg.Groq.APIKey, cfg.Groq.BaseURL), cfg.Vision.Model, log)

	a.Consult = consult.NewService(
		consult.Config{OutputDir: cfg.OutputDir},
		a.Speech,
		vision,
		a.Speech,
		artifacts,
		repo,
		notifier,
		log,
	)
	return a, nil
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) consultationRepo(ctx context.Context, dsn string, log *zap.Logger) (ports.ConsultationRepo, error) {
	if dsn == "" {
		log.Info("DATABASE_URL is not set, keeping history in memory", zap.Int("capacity", memoryHistory))
		return infra.NewMemoryConsultationRepo(memoryHistory), nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := infra.EnsureSchema(pingCtx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	a.db = db
	return infra.NewConsultationRepo(db), nil
}

func newTranscriber(cfg config.Config) (speech.STTClient, error) {
	switch cfg.STT.Provider {
	case config.STTProviderWhisper:
		return speech.NewWhisperTranscriber(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.STT.Model, cfg.STT.Language), nil
	case config.STTProviderDeepgram:
		return speech.NewDeepgramClient(speech.DeepgramConfig{
			APIKey:   cfg.Deepgram.APIKey,
			BaseURL:  cfg.Deepgram.BaseURL,
			Model:    cfg.Deepgram.Model,
			Language: cfg.STT.Language,
		}), nil
	}
	return nil, fmt.Errorf("unknown stt provider %q", cfg.STT.Provider)
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/Vovarama1992/quickcare/internal/speech"
)

const (
	STTProviderWhisper  = "whisper"
	STTProviderDeepgram = "deepgram"
)

type Config struct {
	Port               string `env:"PORT" envDefault:"8080"`
	OutputDir          string `env:"OUTPUT_DIR" envDefault:"data/audio"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	DatabaseURL        string `env:"DATABASE_URL"`
	AdminToken         string `env:"ADMIN_TOKEN"`

	Groq       GroqConfig       `envPrefix:"GROQ_"`
	Vision     VisionConfig     `envPrefix:"VISION_"`
	STT        STTConfig        `envPrefix:"STT_"`
	Deepgram   DeepgramConfig   `envPrefix:"DEEPGRAM_"`
	ElevenLabs ElevenLabsConfig `envPrefix:"ELEVENLABS_"`
	Fallback   FallbackConfig   `envPrefix:"FALLBACK_TTS_"`
	S3         S3Config         `envPrefix:"S3_"`
	Telegram   TelegramConfig   `envPrefix:"TELEGRAM_"`
}

// Groq exposes an OpenAI-compatible API, used for both vision and whisper.
type GroqConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
}

type VisionConfig struct {
	Model string `env:"MODEL" envDefault:"llama-3.2-11b-vision-preview"`
}

type STTConfig struct {
	Provider string `env:"PROVIDER" envDefault:"whisper"`
	Model    string `env:"MODEL" envDefault:"whisper-large-v3"`
	Language string `env:"LANGUAGE" envDefault:"en"`
}

type DeepgramConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.deepgram.com"`
	Model   string `env:"MODEL" envDefault:"nova-2"`
}

type ElevenLabsConfig struct {
	APIKey          string  `env:"API_KEY"`
	BaseURL         string  `env:"BASE_URL" envDefault:"https://api.elevenlabs.io"`
	VoiceID         string  `env:"VOICE_ID" envDefault:"21m00Tcm4TlvDq8ikWAM"`
	ModelID         string  `env:"MODEL_ID" envDefault:"eleven_turbo_v2"`
	Stability       float64 `env:"STABILITY" envDefault:"0.5"`
	SimilarityBoost float64 `env:"SIMILARITY_BOOST" envDefault:"0.5"`
}

func (c ElevenLabsConfig) VoiceSettings() speech.VoiceSettings {
	return speech.VoiceSettings{Stability: c.Stability, SimilarityBoost: c.SimilarityBoost}
}

type FallbackConfig struct {
	Command           string `env:"COMMAND" envDefault:"gtts-cli"`
	Language          string `env:"LANGUAGE" envDefault:"en"`
	RequestsPerMinute int    `env:"RPM" envDefault:"50"`
}

type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION"`
	Secure    bool   `env:"SECURE" envDefault:"true"`
}

// Enabled reports whether artifacts should be uploaded to object storage.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type TelegramConfig struct {
	BotToken     string  `env:"BOT_TOKEN"`
	AdminChatIDs []int64 `env:"ADMIN_CHAT_IDS" envSeparator:","`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && len(c.AdminChatIDs) > 0
}

// Load reads the process environment. Call godotenv.Load beforehand to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.ElevenLabs.VoiceSettings().Validate(); err != nil {
		return fmt.Errorf("ELEVENLABS voice settings: %w", err)
	}
	switch c.STT.Provider {
	case STTProviderWhisper, STTProviderDeepgram:
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STT.Provider)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is empty")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID           = "21m00Tcm4TlvDq8ikWAM" // Rachel
	DefaultModelID           = "eleven_turbo_v2"

	maxErrorBody = 4 << 10
)

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.5, SimilarityBoost: 0.5}
}

func (v VoiceSettings) Validate() error {
	if v.Stability < 0 || v.Stability > 1 {
		return fmt.Errorf("stability %v out of [0,1]", v.Stability)
	}
	if v.SimilarityBoost < 0 || v.SimilarityBoost > 1 {
		return fmt.Errorf("similarity boost %v out of [0,1]", v.SimilarityBoost)
	}
	return nil
}

type ElevenLabsConfig struct {
	APIKey     string
	BaseURL    string
	VoiceID    string
	ModelID    string
	Settings   *VoiceSettings // nil means DefaultVoiceSettings
	HTTPClient *http.Client
}

type ElevenLabsClient struct {
	apiKey   string
	baseURL  string
	voiceID  string
	modelID  string
	settings VoiceSettings
	httpCli  *http.Client
}

// NewElevenLabsClient never fails on a missing key: calls without one are
// reported as a 401 ProviderError so the caller falls back.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultElevenLabsBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	settings := DefaultVoiceSettings()
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &ElevenLabsClient{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		voiceID:  cfg.VoiceID,
		modelID:  cfg.ModelID,
		settings: settings,
		httpCli:  cfg.HTTPClient,
	}
}

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// TEXT → SPEECH
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Err: ErrMissingAPIKey}
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:          text,
		ModelID:       c.modelID,
		VoiceSettings: c.settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encode elevenlabs request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read audio body: %w", err)}
	}
	if len(audio) == 0 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Err: errEmptyAudio}
	}

	return audio, nil
}

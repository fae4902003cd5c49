package ports

import (
	"context"
	"time"
)

// DTO одной консультации
type ConsultationRecord struct {
	ID              string    `json:"id"`
	Transcript      string    `json:"transcript"`
	Response        string    `json:"response"`
	HasImage        bool      `json:"has_image"`
	AudioURL        *string   `json:"audio_url,omitempty"`
	Provider        *string   `json:"provider,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

type ConsultationRepo interface {
	Create(ctx context.Context, rec ConsultationRecord) error
	ListRecent(ctx context.Context, limit int) ([]ConsultationRecord, error)
}

package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vovarama1992/quickcare/internal/ports"
)

const consultationsSchema = `
CREATE TABLE IF NOT EXISTS consultations (
	id               TEXT PRIMARY KEY,
	transcript       TEXT NOT NULL,
	response         TEXT NOT NULL,
	has_image        BOOLEAN NOT NULL DEFAULT FALSE,
	audio_url        TEXT,
	provider         TEXT,
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL
)`

type consultationRepo struct {
	db *sql.DB
}

func NewConsultationRepo(db *sql.DB) ports.ConsultationRepo {
	return &consultationRepo{db: db}
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, consultationsSchema)
	return err
}

func (r *consultationRepo) Create(ctx context.Context, rec ports.ConsultationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consultations (id, transcript, response, has_image, audio_url, provider, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.Transcript, rec.Response, rec.HasImage, rec.AudioURL, rec.Provider, rec.DurationSeconds, rec.CreatedAt)
	return err
}

func (r *consultationRepo) ListRecent(ctx context.Context, limit int) ([]ports.ConsultationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transcript, response, has_image, audio_url, provider, duration_seconds, created_at
		FROM consultations
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ports.ConsultationRecord
	for rows.Next() {
		var rec ports.ConsultationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Transcript,
			&rec.Response,
			&rec.HasImage,
			&rec.AudioURL,
			&rec.Provider,
			&rec.DurationSeconds,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

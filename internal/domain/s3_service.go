package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/quickcare/internal/ports"
)

type s3Service struct {
	client ports.S3Client
	now    func() time.Time
}

func NewS3Service(client ports.S3Client) ports.ArtifactService {
	return &s3Service{client: client, now: time.Now}
}

// ObjectKey: путь в бакете
func (s *s3Service) ObjectKey(consultationID, filename string) string {
	date := s.now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("consultations/%s/%s/%s", date, consultationID, clean)
}

func (s *s3Service) SaveAudio(ctx context.Context, consultationID, path string) (string, error) {
	if consultationID == "" {
		return "", fmt.Errorf("consultationID required")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	key := s.ObjectKey(consultationID, path)
	return s.client.PutObject(ctx, key, f, info.Size(), "audio/mpeg")
}

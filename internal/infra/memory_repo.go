package infra

import (
	"context"
	"sync"

	"github.com/Vovarama1992/quickcare/internal/ports"
)

// memoryRepo keeps the last N consultations when no database is configured.
type memoryRepo struct {
	mu       sync.Mutex
	capacity int
	records  []ports.ConsultationRecord
}

func NewMemoryConsultationRepo(capacity int) ports.ConsultationRepo {
	if capacity <= 0 {
		capacity = 100
	}
	return &memoryRepo{capacity: capacity}
}

func (r *memoryRepo) Create(_ context.Context, rec ports.ConsultationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
	if over := len(r.records) - r.capacity; over > 0 {
		r.records = append([]ports.ConsultationRecord(nil), r.records[over:]...)
	}
	return nil
}

// ListRecent returns newest first.
func (r *memoryRepo) ListRecent(_ context.Context, limit int) ([]ports.ConsultationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]ports.ConsultationRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

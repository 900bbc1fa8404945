package generationRepo

import (
	"context"
	"sort"
	"sync"

	"fashionstudio/models"

	"github.com/google/uuid"
)

// MemoryGenerationRepo keeps records in process memory.
type MemoryGenerationRepo struct {
	mu      sync.RWMutex
	records map[string]models.GenerationRecord
}

// NewMemoryGenerationRepo creates an empty in-memory GenerationRepository.
func NewMemoryGenerationRepo() *MemoryGenerationRepo {
	return &MemoryGenerationRepo{records: make(map[string]models.GenerationRecord)}
}

func (r *MemoryGenerationRepo) Create(_ context.Context, record *models.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uuid.New().String()
	r.records[record.ID] = *record
	return nil
}

func (r *MemoryGenerationRepo) ListByOwner(_ context.Context, uid string, limit int) ([]models.GenerationRecord, error) {
	r.mu.RLock()
	out := []models.GenerationRecord{}
	for _, rec := range r.records {
		if rec.UserID == uid {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if n := normalizeLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *MemoryGenerationRepo) Get(_ context.Context, id string) (*models.GenerationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &rec, nil
}

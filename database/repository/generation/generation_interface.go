package generationRepo

import (
	"context"
	"errors"

	"fashionstudio/models"
)

// ErrRecordNotFound is returned when a generation record does not exist.
var ErrRecordNotFound = errors.New("generation record not found")

// DefaultListLimit caps lookbook queries.
const DefaultListLimit = 100

// GenerationRepository is an append-only store of generation records.
type GenerationRepository interface {
	// Create appends the record and assigns its ID.
	Create(ctx context.Context, record *models.GenerationRecord) error
	// ListByOwner returns the user's records, newest first.
	ListByOwner(ctx context.Context, uid string, limit int) ([]models.GenerationRecord, error)
	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*models.GenerationRecord, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}

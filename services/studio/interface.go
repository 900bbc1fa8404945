package studio

import (
	"context"
	"time"

	catalogRepo "fashionstudio/database/repository/catalog"
	generationRepo "fashionstudio/database/repository/generation"
	"fashionstudio/models"
	"fashionstudio/services/intelligence"
	"fashionstudio/services/ledger"
	"fashionstudio/services/storage"
)

// StudioService covers uploads, try-on generation, the lookbook and the model catalog.
type StudioService interface {
	// Upload stores a model or garment photo under the caller's prefix.
	Upload(ctx context.Context, uid, kind, filename string, data []byte) (*models.UploadResult, error)
	// Generate runs one try-on generation and charges one credit for it.
	// A non-nil result with an error means the image was produced and recorded but not charged.
	Generate(ctx context.Context, uid string, req models.GenerateRequest) (*models.GenerationResult, error)
	// Lookbook lists the caller's generations, newest first.
	Lookbook(ctx context.Context, uid string, limit int) ([]models.GenerationRecord, error)
	// LookbookImage returns one generation, only to its owner.
	LookbookImage(ctx context.Context, uid, id string) (*models.GenerationRecord, error)
	// Catalog lists predefined model photos.
	Catalog(ctx context.Context, gender string) ([]models.PredefinedModel, error)
}

// DefaultStudioService is the production implementation.
type DefaultStudioService struct {
	Records    generationRepo.GenerationRepository
	Models     catalogRepo.CatalogRepository
	Blobs      storage.BlobStore
	Generators intelligence.Generators
	Ledger     ledger.LedgerService

	DefaultMethod     string
	GenerationTimeout time.Duration
	MaxUploadBytes    int64
	Now               func() time.Time
}

func (s *DefaultStudioService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

package catalogRepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fashionstudio/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// CatalogRepository lists the predefined model photos.
type CatalogRepository interface {
	// List returns predefined models, optionally filtered by gender.
	List(ctx context.Context, gender string) ([]models.PredefinedModel, error)
}

// FirestoreCatalogRepo reads the "predefinedModels" collection.
type FirestoreCatalogRepo struct {
	client *firestore.Client
}

// NewFirestoreCatalogRepo creates a Firestore-backed CatalogRepository.
func NewFirestoreCatalogRepo(client *firestore.Client) CatalogRepository {
	return &FirestoreCatalogRepo{client: client}
}

func (r *FirestoreCatalogRepo) List(ctx context.Context, gender string) ([]models.PredefinedModel, error) {
	q := r.client.Collection("predefinedModels").Query
	if gender != "" {
		q = q.Where("gender", "==", strings.ToLower(gender))
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []models.PredefinedModel{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list predefined models: %w", err)
		}
		var m models.PredefinedModel
		if err := snap.DataTo(&m); err != nil {
			return nil, fmt.Errorf("failed to decode predefined model %s: %w", snap.Ref.ID, err)
		}
		m.ID = snap.Ref.ID
		out = append(out, m)
	}
	return out, nil
}

// MemoryCatalogRepo serves a fixed catalog.
type MemoryCatalogRepo struct {
	mu     sync.RWMutex
	models []models.PredefinedModel
}

// NewMemoryCatalogRepo creates a catalog from the given entries.
func NewMemoryCatalogRepo(entries ...models.PredefinedModel) *MemoryCatalogRepo {
	return &MemoryCatalogRepo{models: entries}
}

// Add appends an entry.
func (r *MemoryCatalogRepo) Add(m models.PredefinedModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, m)
}

func (r *MemoryCatalogRepo) List(_ context.Context, gender string) ([]models.PredefinedModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.PredefinedModel{}
	for _, m := range r.models {
		if gender == "" || strings.EqualFold(m.Gender, gender) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

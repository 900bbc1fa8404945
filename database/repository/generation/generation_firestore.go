package generationRepo

import (
	"context"
	"fmt"

	"fashionstudio/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const generationsCollection = "generations"

// FirestoreGenerationRepo stores records in the "generations" collection.
type FirestoreGenerationRepo struct {
	client *firestore.Client
}

// NewFirestoreGenerationRepo creates a Firestore-backed GenerationRepository.
func NewFirestoreGenerationRepo(client *firestore.Client) GenerationRepository {
	return &FirestoreGenerationRepo{client: client}
}

// Create writes the record under a generated document ID.
func (r *FirestoreGenerationRepo) Create(ctx context.Context, record *models.GenerationRecord) error {
	ref := r.client.Collection(generationsCollection).NewDoc()
	if _, err := ref.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create generation record: %w", err)
	}
	record.ID = ref.ID
	return nil
}

// ListByOwner runs where(userId ==) orderBy(createdAt desc).
func (r *FirestoreGenerationRepo) ListByOwner(ctx context.Context, uid string, limit int) ([]models.GenerationRecord, error) {
	iter := r.client.Collection(generationsCollection).
		Where("userId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Limit(normalizeLimit(limit)).
		Documents(ctx)
	defer iter.Stop()

	records := []models.GenerationRecord{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list generations for %s: %w", uid, err)
		}
		var rec models.GenerationRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode generation %s: %w", snap.Ref.ID, err)
		}
		rec.ID = snap.Ref.ID
		records = append(records, rec)
	}
	return records, nil
}

// Get retrieves a record by document ID.
func (r *FirestoreGenerationRepo) Get(ctx context.Context, id string) (*models.GenerationRecord, error) {
	snap, err := r.client.Collection(generationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch generation %s: %w", id, err)
	}
	var rec models.GenerationRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode generation %s: %w", id, err)
	}
	rec.ID = snap.Ref.ID
	return &rec, nil
}

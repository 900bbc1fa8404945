package generationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fashionstudio/models"
	"fashionstudio/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoGenerationRepo implements GenerationRepository using MongoDB.
type MongoGenerationRepo struct {
	coll *mongo.Collection
}

// NewMongoGenerationRepo creates a MongoDB-backed GenerationRepository.
func NewMongoGenerationRepo(db *mongo.Database) GenerationRepository {
	repo := &MongoGenerationRepo{coll: db.Collection("generations")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create generation indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoGenerationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

// ownerQuery returns the filter and options for a lookbook listing.
func ownerQuery(uid string, limit int) (bson.M, *options.FindOptions) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	return bson.M{"userId": uid}, opts
}

// Create inserts the record with a fresh UUID.
func (r *MongoGenerationRepo) Create(ctx context.Context, record *models.GenerationRecord) error {
	record.ID = uuid.New().String()
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create generation record: %w", err)
	}
	return nil
}

// ListByOwner returns the user's records, newest first.
func (r *MongoGenerationRepo) ListByOwner(ctx context.Context, uid string, limit int) ([]models.GenerationRecord, error) {
	filter, opts := ownerQuery(uid, limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	records := []models.GenerationRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode generations: %w", err)
	}
	return records, nil
}

// Get retrieves a record by ID.
func (r *MongoGenerationRepo) Get(ctx context.Context, id string) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch generation %s: %w", id, err)
	}
	return &rec, nil
}

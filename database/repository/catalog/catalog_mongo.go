package catalogRepo

import (
	"context"
	"fmt"
	"strings"

	"fashionstudio/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo reads the "predefinedModels" collection.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo creates a MongoDB-backed CatalogRepository.
func NewMongoCatalogRepo(db *mongo.Database) CatalogRepository {
	return &MongoCatalogRepo{coll: db.Collection("predefinedModels")}
}

func genderFilter(gender string) bson.M {
	if gender == "" {
		return bson.M{}
	}
	return bson.M{"gender": strings.ToLower(gender)}
}

func (r *MongoCatalogRepo) List(ctx context.Context, gender string) ([]models.PredefinedModel, error) {
	cursor, err := r.coll.Find(ctx, genderFilter(gender), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list predefined models: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.PredefinedModel{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode predefined models: %w", err)
	}
	return out, nil
}

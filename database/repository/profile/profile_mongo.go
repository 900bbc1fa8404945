package profileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fashionstudio/models"
	"fashionstudio/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a new instance of ProfileRepository using MongoDB.
func NewMongoProfileRepo(db *mongo.Database) ProfileRepository {
	repo := &MongoProfileRepo{coll: db.Collection("users")}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create profile indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoProfileRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phoneNumber", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// spendFilter matches the profile only while it still has a credit to spend.
func spendFilter(uid string) bson.M {
	return bson.M{"_id": uid, "remainingGenerations": bson.M{"$gt": 0}}
}

func spendUpdate(at time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"remainingGenerations": -1, "totalGenerations": 1},
		"$set": bson.M{"lastGeneratedAt": at},
	}
}

// detailsUpdate returns nil when there is nothing to change.
func detailsUpdate(update models.ProfileUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if len(set) == 0 {
		return nil
	}
	return bson.M{"$set": set}
}

func (r *MongoProfileRepo) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.UserProfile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.UserProfile
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a profile by uid.
func (r *MongoProfileRepo) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile %s: %w", uid, err)
	}
	return &p, nil
}

// Create inserts a new profile document.
func (r *MongoProfileRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile %s: %w", profile.ID, err)
	}
	return nil
}

// TouchLogin sets lastLoginAt only.
func (r *MongoProfileRepo) TouchLogin(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	p, err := r.findAndUpdate(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"lastLoginAt": at}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update login time for %s: %w", uid, err)
	}
	return p, nil
}

// SpendCredit applies the guarded $inc as one document update.
func (r *MongoProfileRepo) SpendCredit(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	p, err := r.findAndUpdate(ctx, spendFilter(uid), spendUpdate(at))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("credit update failed for %s: %w", uid, err)
	}

	// Nothing matched: either the profile is missing or its balance is zero.
	if _, getErr := r.Get(ctx, uid); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInsufficientCredits
}

// UpdateDetails writes the supplied name/email fields.
func (r *MongoProfileRepo) UpdateDetails(ctx context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error) {
	doc := detailsUpdate(update)
	if doc == nil {
		return r.Get(ctx, uid)
	}
	p, err := r.findAndUpdate(ctx, bson.M{"_id": uid}, doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile %s: %w", uid, err)
	}
	return p, nil
}

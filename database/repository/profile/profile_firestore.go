package profileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fashionstudio/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// FirestoreProfileRepo implements ProfileRepository on the Firestore "users" collection.
type FirestoreProfileRepo struct {
	client *firestore.Client
}

// NewFirestoreProfileRepo creates a Firestore-backed ProfileRepository.
func NewFirestoreProfileRepo(client *firestore.Client) ProfileRepository {
	return &FirestoreProfileRepo{client: client}
}

func (r *FirestoreProfileRepo) doc(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

func decodeProfile(snap *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

// Get retrieves a profile by uid.
func (r *FirestoreProfileRepo) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	snap, err := r.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile %s: %w", uid, err)
	}
	return decodeProfile(snap)
}

// Create inserts the profile document; it fails if the document already exists.
func (r *FirestoreProfileRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	if _, err := r.doc(profile.ID).Create(ctx, profile); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile %s: %w", profile.ID, err)
	}
	return nil
}

// TouchLogin merges lastLoginAt into the existing document.
func (r *FirestoreProfileRepo) TouchLogin(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{{Path: "lastLoginAt", Value: at}})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update login time for %s: %w", uid, err)
	}
	return r.Get(ctx, uid)
}

// SpendCredit runs the balance check and the counter update in one transaction.
func (r *FirestoreProfileRepo) SpendCredit(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error) {
	ref := r.doc(uid)
	var updated *models.UserProfile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrProfileNotFound
			}
			return err
		}
		p, err := decodeProfile(snap)
		if err != nil {
			return err
		}
		if p.RemainingGenerations <= 0 {
			return ErrInsufficientCredits
		}

		if err := tx.Update(ref, []firestore.Update{
			{Path: "remainingGenerations", Value: firestore.Increment(-1)},
			{Path: "totalGenerations", Value: firestore.Increment(1)},
			{Path: "lastGeneratedAt", Value: at},
		}); err != nil {
			return err
		}

		p.RemainingGenerations--
		p.TotalGenerations++
		spentAt := at
		p.LastGeneratedAt = &spentAt
		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) || errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("credit transaction failed for %s: %w", uid, err)
	}
	return updated, nil
}

// UpdateDetails writes the supplied name/email fields.
func (r *FirestoreProfileRepo) UpdateDetails(ctx context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error) {
	var updates []firestore.Update
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *update.Email})
	}
	if len(updates) == 0 {
		return r.Get(ctx, uid)
	}

	if _, err := r.doc(uid).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile %s: %w", uid, err)
	}
	return r.Get(ctx, uid)
}

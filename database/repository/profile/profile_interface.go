package profileRepo

import (
	"context"
	"errors"
	"time"

	"fashionstudio/models"
)

var (
	// ErrProfileNotFound is returned when no profile exists for the uid.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned by Create when the uid already has a profile.
	ErrProfileExists = errors.New("profile already exists")
	// ErrInsufficientCredits is returned by SpendCredit when the balance is zero.
	ErrInsufficientCredits = errors.New("no remaining generations")
)

// ProfileRepository defines methods for user profile access.
// Credit fields change only through Create and SpendCredit.
type ProfileRepository interface {
	// Get retrieves a profile by uid.
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	// Create inserts a new profile keyed by its ID.
	Create(ctx context.Context, profile *models.UserProfile) error
	// TouchLogin sets lastLoginAt and leaves every other field untouched.
	TouchLogin(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error)
	// SpendCredit decrements remainingGenerations and increments totalGenerations
	// in a single atomic update, refusing when the balance is already zero.
	SpendCredit(ctx context.Context, uid string, at time.Time) (*models.UserProfile, error)
	// UpdateDetails changes display name and/or email.
	UpdateDetails(ctx context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error)
}

package session

import (
	"context"
	"time"

	profileRepo "fashionstudio/database/repository/profile"
	"fashionstudio/models"
)

// SessionService maps verified identities to stored profiles and issues studio session tokens.
type SessionService interface {
	// EstablishSession reads or creates the profile for a verified identity.
	EstablishSession(ctx context.Context, identity models.VerifiedIdentity, fields models.ProfileFields) (*models.UserProfile, error)
	// SignIn establishes the session and issues a token for it.
	SignIn(ctx context.Context, identity models.VerifiedIdentity, fields models.ProfileFields) (*models.SessionResponse, error)

	// Email/password accounts
	SignUpWithEmail(ctx context.Context, req models.EmailSignupRequest) (*models.SessionResponse, error)
	SignInWithEmail(ctx context.Context, req models.EmailLoginRequest) (*models.SessionResponse, error)

	// Firebase client sessions
	ExchangeIDToken(ctx context.Context, idToken string) (*models.SessionResponse, error)

	// Profile settings
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error)
}

// PasswordProvider creates and checks email/password accounts.
type PasswordProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (models.VerifiedIdentity, error)
	SignIn(ctx context.Context, email, password string) (models.VerifiedIdentity, error)
}

// IDTokenVerifier validates an ID token issued to a client by the identity provider.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (models.VerifiedIdentity, error)
}

// TokenIssuer signs studio session tokens.
type TokenIssuer func(subject, authMethod string, ttl time.Duration) (string, error)

// DefaultSessionService is the production implementation.
type DefaultSessionService struct {
	Profiles        profileRepo.ProfileRepository
	Passwords       PasswordProvider
	IDTokens        IDTokenVerifier
	IssueToken      TokenIssuer
	StartingCredits int64
	TokenTTL        time.Duration
	Now             func() time.Time
}

func (s *DefaultSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

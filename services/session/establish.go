package session

import (
	"context"
	"errors"
	"time"

	profileRepo "fashionstudio/database/repository/profile"
	"fashionstudio/models"
	"fashionstudio/utils"

	"go.uber.org/zap"
)

// EstablishSession looks the profile up by uid. A missing profile is created with the
// starting grant; an existing one only gets lastLoginAt refreshed. Each call takes
// exactly one of the two paths.
func (s *DefaultSessionService) EstablishSession(ctx context.Context, identity models.VerifiedIdentity, fields models.ProfileFields) (*models.UserProfile, error) {
	if identity.UID == "" {
		return nil, utils.NewError(utils.KindInvalidInput, "verified identity has no uid")
	}
	logger := utils.GetLogger().With(zap.String("uid", identity.UID))
	now := s.now()

	existing, err := s.Profiles.Get(ctx, identity.UID)
	switch {
	case err == nil:
		return s.touch(ctx, existing.ID)
	case !errors.Is(err, profileRepo.ErrProfileNotFound):
		logger.Error("Profile lookup failed", zap.Error(err))
		return nil, utils.WrapError(utils.KindProfileStoreUnavailable, err, "")
	}

	profile := newProfile(identity, fields, s.StartingCredits, now)
	if err := s.Profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, profileRepo.ErrProfileExists) {
			// Another sign-in created it between our read and write.
			return s.touch(ctx, identity.UID)
		}
		logger.Error("Profile creation failed", zap.Error(err))
		return nil, utils.WrapError(utils.KindProfileStoreUnavailable, err, "")
	}

	logger.Info("Profile created",
		zap.String("authMethod", profile.AuthMethod),
		zap.Int64("remainingGenerations", profile.RemainingGenerations))
	return profile, nil
}

func (s *DefaultSessionService) touch(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.Profiles.TouchLogin(ctx, uid, s.now())
	if err != nil {
		utils.GetLogger().Error("Login timestamp update failed", zap.String("uid", uid), zap.Error(err))
		return nil, utils.WrapError(utils.KindProfileStoreUnavailable, err, "")
	}
	return profile, nil
}

func newProfile(identity models.VerifiedIdentity, fields models.ProfileFields, credits int64, now time.Time) *models.UserProfile {
	phone := identity.PhoneNumber
	if phone == "" {
		phone = fields.PhoneNumber
	}
	email := fields.Email
	if email == "" {
		email = identity.Email
	}
	method := identity.Provider
	if method == "" {
		method = models.AuthMethodPhone
	}

	return &models.UserProfile{
		ID:                   identity.UID,
		Name:                 fields.Name,
		Email:                email,
		PhoneNumber:          phone,
		AuthMethod:           method,
		IsPhoneVerified:      method == models.AuthMethodPhone,
		IsEmailVerified:      false,
		AccountStatus:        "active",
		RemainingGenerations: credits,
		TotalGenerations:     0,
		CreatedAt:            now,
		LastLoginAt:          now,
	}
}

// SignIn establishes the session and issues a token for the resulting profile.
func (s *DefaultSessionService) SignIn(ctx context.Context, identity models.VerifiedIdentity, fields models.ProfileFields) (*models.SessionResponse, error) {
	profile, err := s.EstablishSession(ctx, identity, fields)
	if err != nil {
		return nil, err
	}
	token, err := s.IssueToken(profile.ID, identity.Provider, s.TokenTTL)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, err, "failed to issue session token")
	}
	return &models.SessionResponse{Token: token, Profile: profile}, nil
}

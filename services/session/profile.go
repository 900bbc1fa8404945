package session

import (
	"context"
	"errors"
	"strings"

	profileRepo "fashionstudio/database/repository/profile"
	"fashionstudio/models"
	"fashionstudio/utils"
)

const maxNameLength = 80

// GetProfile returns the caller's profile.
func (s *DefaultSessionService) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.Profiles.Get(ctx, uid)
	if err != nil {
		return nil, profileError(err)
	}
	return profile, nil
}

// UpdateProfile changes display name and email. Credit fields cannot be written here.
func (s *DefaultSessionService) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (*models.UserProfile, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if len(name) > maxNameLength {
			return nil, utils.NewError(utils.KindInvalidInput, "name is too long")
		}
		update.Name = &name
	}
	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		update.Email = &email
	}

	profile, err := s.Profiles.UpdateDetails(ctx, uid, update)
	if err != nil {
		return nil, profileError(err)
	}
	return profile, nil
}

func profileError(err error) error {
	if errors.Is(err, profileRepo.ErrProfileNotFound) {
		return utils.WrapError(utils.KindNotFound, err, "profile not found")
	}
	return utils.WrapError(utils.KindProfileStoreUnavailable, err, "")
}

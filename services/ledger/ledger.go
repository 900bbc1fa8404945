package ledger

import (
	"context"
	"errors"
	"time"

	profileRepo "fashionstudio/database/repository/profile"
	"fashionstudio/models"
	"fashionstudio/utils"

	"go.uber.org/zap"
)

// LedgerService owns every write to the credit fields after profile creation.
type LedgerService interface {
	// SpendOneCredit charges one generation. Call it once per successful generation,
	// after the generation record has been written. Not idempotent.
	SpendOneCredit(ctx context.Context, uid string) (*models.UserProfile, error)
	// CanGenerate reads the current balance and reports whether a generation may start.
	CanGenerate(ctx context.Context, uid string) (*models.UserProfile, bool, error)
	// RecordGap accounts for a generation that was recorded but never charged.
	RecordGap(uid, recordID string, cause error)
}

// DefaultLedgerService spends credits through the profile repository's atomic update.
type DefaultLedgerService struct {
	Profiles profileRepo.ProfileRepository
	Metrics  *Metrics
	Now      func() time.Time
}

// NewLedgerService wires the ledger to a profile store.
func NewLedgerService(profiles profileRepo.ProfileRepository, metrics *Metrics) *DefaultLedgerService {
	return &DefaultLedgerService{Profiles: profiles, Metrics: metrics, Now: time.Now}
}

func (s *DefaultLedgerService) SpendOneCredit(ctx context.Context, uid string) (*models.UserProfile, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	profile, err := s.Profiles.SpendCredit(ctx, uid, now)
	if err != nil {
		if errors.Is(err, profileRepo.ErrInsufficientCredits) {
			s.Metrics.spend("insufficient")
			return nil, utils.WrapError(utils.KindInsufficientCredits, err, "")
		}
		s.Metrics.spend("failed")
		utils.GetLogger().Error("Credit spend failed", zap.String("uid", uid), zap.Error(err))
		return nil, utils.WrapError(utils.KindLedgerUpdateFailed, err, "")
	}

	s.Metrics.spend("ok")
	utils.GetLogger().Info("Credit spent",
		zap.String("uid", uid),
		zap.Int64("remainingGenerations", profile.RemainingGenerations),
		zap.Int64("totalGenerations", profile.TotalGenerations))
	return profile, nil
}

func (s *DefaultLedgerService) CanGenerate(ctx context.Context, uid string) (*models.UserProfile, bool, error) {
	profile, err := s.Profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, profileRepo.ErrProfileNotFound) {
			return nil, false, utils.WrapError(utils.KindNotFound, err, "profile not found")
		}
		return nil, false, utils.WrapError(utils.KindProfileStoreUnavailable, err, "")
	}
	return profile, profile.CanGenerate(), nil
}

func (s *DefaultLedgerService) RecordGap(uid, recordID string, cause error) {
	s.Metrics.gap()
	utils.GetLogger().Error("Ledger gap: generation recorded without a credit spend",
		zap.String("uid", uid),
		zap.String("recordId", recordID),
		zap.Error(cause))
}

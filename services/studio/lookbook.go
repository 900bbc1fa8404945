package studio

import (
	"context"
	"errors"

	generationRepo "fashionstudio/database/repository/generation"
	"fashionstudio/models"
	"fashionstudio/utils"
)

func (s *DefaultStudioService) Lookbook(ctx context.Context, uid string, limit int) ([]models.GenerationRecord, error) {
	records, err := s.Records.ListByOwner(ctx, uid, limit)
	if err != nil {
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}
	return records, nil
}

func (s *DefaultStudioService) LookbookImage(ctx context.Context, uid, id string) (*models.GenerationRecord, error) {
	record, err := s.Records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, generationRepo.ErrRecordNotFound) {
			return nil, utils.WrapError(utils.KindNotFound, err, "")
		}
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}
	// Someone else's record looks exactly like a missing one.
	if record.UserID != uid {
		return nil, utils.NewError(utils.KindNotFound, "")
	}
	return record, nil
}

func (s *DefaultStudioService) Catalog(ctx context.Context, gender string) ([]models.PredefinedModel, error) {
	entries, err := s.Models.List(ctx, gender)
	if err != nil {
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}
	return entries, nil
}

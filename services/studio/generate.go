package studio

import (
	"context"
	"errors"
	"strings"

	"fashionstudio/models"
	"fashionstudio/services/intelligence"
	"fashionstudio/services/storage"
	"fashionstudio/utils"

	"go.uber.org/zap"
)

func (s *DefaultStudioService) method(requested string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	if s.DefaultMethod != "" {
		return s.DefaultMethod
	}
	return models.MethodVertexAI
}

// Generate validates the request, re-checks the balance, runs the generator, stores the
// output and the record, then spends exactly one credit.
func (s *DefaultStudioService) Generate(ctx context.Context, uid string, req models.GenerateRequest) (*models.GenerationResult, error) {
	req.ModelImageURL = strings.TrimSpace(req.ModelImageURL)
	req.GarmentImageURL = strings.TrimSpace(req.GarmentImageURL)
	if req.ModelImageURL == "" || req.GarmentImageURL == "" {
		return nil, utils.NewError(utils.KindInvalidInput, "modelImageUrl and garmentImageUrl are required")
	}
	method := s.method(req.Method)
	generator, err := s.Generators.Lookup(method)
	if err != nil {
		return nil, utils.WrapError(utils.KindInvalidInput, err, "unsupported generation method")
	}

	logger := utils.GetLogger().With(zap.String("uid", uid), zap.String("method", method))

	// Nothing external happens before the balance gate.
	_, allowed, err := s.Ledger.CanGenerate(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, utils.NewError(utils.KindInsufficientCredits, "")
	}

	model, err := s.fetchImage(ctx, uid, req.ModelImageURL)
	if err != nil {
		return nil, err
	}
	garment, err := s.fetchImage(ctx, uid, req.GarmentImageURL)
	if err != nil {
		return nil, err
	}

	genCtx := ctx
	if s.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.GenerationTimeout)
		defer cancel()
	}
	output, err := generator.Generate(genCtx, model, garment)
	if err != nil {
		logger.Error("Generation failed", zap.Error(err))
		detail := ""
		if errors.Is(err, intelligence.ErrBlocked) {
			detail = "blocked by provider"
		}
		return nil, utils.WrapError(utils.KindGenerationFailed, err, detail)
	}

	now := s.now()
	outputPath := storage.GeneratedPath(uid, now)
	outputURL, err := s.Blobs.Upload(ctx, outputPath, output.Data, output.MIMEType)
	if err != nil {
		logger.Error("Failed to store generated image", zap.String("path", outputPath), zap.Error(err))
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}

	record := &models.GenerationRecord{
		UserID:          uid,
		ModelImageURL:   req.ModelImageURL,
		GarmentImageURL: req.GarmentImageURL,
		OutputImageURL:  outputURL,
		CreatedAt:       now,
		Method:          method,
	}
	if err := s.Records.Create(ctx, record); err != nil {
		logger.Error("Failed to write generation record", zap.Error(err))
		if delErr := s.Blobs.Delete(ctx, outputPath); delErr != nil {
			logger.Warn("Orphaned generated image", zap.String("path", outputPath), zap.Error(delErr))
		}
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}

	result := &models.GenerationResult{Record: record}
	profile, err := s.Ledger.SpendOneCredit(ctx, uid)
	if err != nil {
		s.Ledger.RecordGap(uid, record.ID, err)
		message, action := utils.UserMessage(utils.KindLedgerUpdateFailed, 0)
		result.Warning = message + " " + action
		return result, err
	}

	result.CreditApplied = true
	result.RemainingGenerations = profile.RemainingGenerations
	result.TotalGenerations = profile.TotalGenerations
	logger.Info("Generation completed",
		zap.String("recordId", record.ID),
		zap.Int64("remainingGenerations", profile.RemainingGenerations))
	return result, nil
}

// fetchImage resolves ref inside the configured store and downloads it.
// Paths under a user prefix must belong to uid.
func (s *DefaultStudioService) fetchImage(ctx context.Context, uid, ref string) (intelligence.Image, error) {
	objectPath, err := s.Blobs.ObjectPath(ref)
	if err != nil {
		return intelligence.Image{}, utils.WrapError(utils.KindInvalidInput, err, "image reference is not a studio upload")
	}
	if storage.UserScoped(objectPath) && !storage.OwnedBy(objectPath, uid) {
		return intelligence.Image{}, utils.NewError(utils.KindInvalidInput, "image reference belongs to another user")
	}

	data, err := s.Blobs.Download(ctx, objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return intelligence.Image{}, utils.WrapError(utils.KindInvalidInput, err, "image not found")
		}
		return intelligence.Image{}, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}
	contentType, ok := detectImage(data)
	if !ok {
		return intelligence.Image{}, utils.NewError(utils.KindInvalidInput, "referenced file is not a supported image")
	}
	return intelligence.Image{Data: data, MIMEType: contentType}, nil
}

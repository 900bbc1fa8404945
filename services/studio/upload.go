package studio

import (
	"context"
	"fmt"

	"fashionstudio/models"
	"fashionstudio/services/storage"
	"fashionstudio/utils"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// detectImage sniffs data and returns its MIME type when it is an accepted image format.
func detectImage(data []byte) (string, bool) {
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}
	return mtype.String(), false
}

func (s *DefaultStudioService) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (s *DefaultStudioService) Upload(ctx context.Context, uid, kind, filename string, data []byte) (*models.UploadResult, error) {
	if !storage.ValidUploadKind(kind) {
		return nil, utils.NewError(utils.KindInvalidInput, "upload kind must be models or garments")
	}
	if len(data) == 0 {
		return nil, utils.NewError(utils.KindInvalidInput, "file is empty")
	}
	if int64(len(data)) > s.maxUploadBytes() {
		return nil, utils.NewError(utils.KindInvalidInput, fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes()))
	}
	contentType, ok := detectImage(data)
	if !ok {
		return nil, utils.NewError(utils.KindInvalidInput, "only JPEG, PNG and WebP images are accepted")
	}

	objectPath := storage.UploadPath(uid, kind, filename, s.now())
	url, err := s.Blobs.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		utils.GetLogger().Error("Upload failed", zap.String("uid", uid), zap.String("path", objectPath), zap.Error(err))
		return nil, utils.WrapError(utils.KindStorageUnavailable, err, "")
	}

	utils.GetLogger().Info("Image uploaded",
		zap.String("uid", uid),
		zap.String("path", objectPath),
		zap.Int("bytes", len(data)))
	return &models.UploadResult{URL: url, Path: objectPath, ContentType: contentType, Size: int64(len(data))}, nil
}

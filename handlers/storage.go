package handlers

import (
	"io"
	"net/http"

	"fashionstudio/services/studio"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
)

// StorageHandler accepts model and garment photo uploads.
type StorageHandler struct {
	Studio   studio.StudioService
	MaxBytes int64
}

// NewStorageHandler creates a new StorageHandler instance.
func NewStorageHandler(svc studio.StudioService, maxBytes int64) *StorageHandler {
	return &StorageHandler{Studio: svc, MaxBytes: maxBytes}
}

// UploadFileHandler stores the multipart "file" under uploads/{uid}/{kind}/.
func (h *StorageHandler) UploadFileHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	kind := c.Param("kind")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindInvalidInput, err, "file not provided"))
		return
	}
	if h.MaxBytes > 0 && fileHeader.Size > h.MaxBytes {
		utils.RespondError(c, utils.NewError(utils.KindInvalidInput, "file is too large"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindInvalidInput, err, "file could not be read"))
		return
	}
	defer f.Close()

	limit := h.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindInvalidInput, err, "file could not be read"))
		return
	}

	result, err := h.Studio.Upload(c.Request.Context(), uid, kind, fileHeader.Filename, data)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

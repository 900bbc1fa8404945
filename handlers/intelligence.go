package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fashionstudio/models"
	"fashionstudio/services/studio"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// StudioHandler serves generation, the lookbook and the model catalog.
type StudioHandler struct {
	Studio studio.StudioService
}

// NewStudioHandler creates a new StudioHandler instance.
func NewStudioHandler(svc studio.StudioService) *StudioHandler {
	return &StudioHandler{Studio: svc}
}

// decodeGenerateRequest accepts exactly the GenerateRequest shape; unknown or nested fields are rejected.
func decodeGenerateRequest(c *gin.Context) (models.GenerateRequest, error) {
	var req models.GenerateRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return req, err
	}
	return req, nil
}

// GenerateHandler runs one try-on generation.
func (h *StudioHandler) GenerateHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	req, err := decodeGenerateRequest(c)
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindInvalidInput, err, "expected {modelImageUrl, garmentImageUrl, method}"))
		return
	}

	result, err := h.Studio.Generate(c.Request.Context(), uid, req)
	if err != nil {
		if result != nil {
			// The image exists; only the balance update failed.
			getLogger(c).Warn("Returning uncharged generation", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, result)
			return
		}
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LookbookHandler lists the caller's generations.
func (h *StudioHandler) LookbookHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.Studio.Lookbook(c.Request.Context(), uid, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generations": records})
}

// LookbookImageHandler returns one of the caller's generations.
func (h *StudioHandler) LookbookImageHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	record, err := h.Studio.LookbookImage(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// CatalogHandler lists predefined model photos, optionally by gender.
func (h *StudioHandler) CatalogHandler(c *gin.Context) {
	entries, err := h.Studio.Catalog(c.Request.Context(), c.Query("gender"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": entries})
}

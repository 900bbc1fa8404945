package handlers

import (
	"net/http"

	"fashionstudio/models"
	"fashionstudio/services/session"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler serves the profile settings routes.
type ProfileHandler struct {
	Sessions session.SessionService
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(sessions session.SessionService) *ProfileHandler {
	return &ProfileHandler{Sessions: sessions}
}

// GetProfileHandler returns the authenticated user's profile.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	profile, err := h.Sessions.GetProfile(c.Request.Context(), uid)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfileHandler changes display name and email.
func (h *ProfileHandler) UpdateProfileHandler(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}
	profile, err := h.Sessions.UpdateProfile(c.Request.Context(), uid, update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Profile updated", zap.String("uid", uid))
	c.JSON(http.StatusOK, profile)
}

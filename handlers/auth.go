package handlers

import (
	"net/http"

	"fashionstudio/models"
	"fashionstudio/services/session"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the email/password and Firebase token sign-in routes.
type AuthHandler struct {
	Sessions session.SessionService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(sessions session.SessionService) *AuthHandler {
	return &AuthHandler{Sessions: sessions}
}

// SignupHandler creates an email account and its profile.
func (h *AuthHandler) SignupHandler(c *gin.Context) {
	var req models.EmailSignupRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Sessions.SignUpWithEmail(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler signs in with email and password.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.EmailLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Sessions.SignInWithEmail(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FirebaseExchangeHandler trades a Firebase ID token for a studio session.
func (h *AuthHandler) FirebaseExchangeHandler(c *gin.Context) {
	var req models.IDTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Sessions.ExchangeIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

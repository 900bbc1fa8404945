package handlers

import (
	"net/http"

	"fashionstudio/middleware"
	"fashionstudio/models"
	"fashionstudio/services/phoneauth"
	"fashionstudio/services/session"
	"fashionstudio/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PhoneAuthHandler drives the per-client phone verification flow.
type PhoneAuthHandler struct {
	Registry *phoneauth.Registry
	Sessions session.SessionService
}

// NewPhoneAuthHandler creates a new PhoneAuthHandler instance.
func NewPhoneAuthHandler(registry *phoneauth.Registry, sessions session.SessionService) *PhoneAuthHandler {
	return &PhoneAuthHandler{Registry: registry, Sessions: sessions}
}

func clientKey(c *gin.Context) string {
	if key := c.GetString("clientKey"); key != "" {
		return key
	}
	return middleware.ClientKey(c)
}

// RequestCodeHandler sends a verification code to the given number.
func (h *PhoneAuthHandler) RequestCodeHandler(c *gin.Context) {
	var req models.PhoneCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	machine := h.Registry.Machine(clientKey(c))
	handle, err := machine.RequestCode(c.Request.Context(), req.PhoneNumber, phoneauth.ClientToken(req.RecaptchaToken))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	state, _ := machine.State()
	c.JSON(http.StatusOK, models.PhoneCodeResponse{SessionHandle: handle, State: state.String()})
}

// VerifyCodeHandler confirms the code and signs the caller in.
func (h *PhoneAuthHandler) VerifyCodeHandler(c *gin.Context) {
	var req models.PhoneVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	key := clientKey(c)
	machine, ok := h.Registry.Lookup(key)
	if !ok {
		utils.RespondError(c, utils.NewError(utils.KindSessionNotFound, ""))
		return
	}
	identity, err := machine.VerifyCode(c.Request.Context(), req.SessionHandle, req.Code)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.signIn(c, key, identity, models.ProfileFields{Name: req.Name, Email: req.Email})
}

// CompleteSessionHandler retries profile setup for a client whose number is already
// verified. The handle returned by RequestCodeHandler must accompany the retry.
func (h *PhoneAuthHandler) CompleteSessionHandler(c *gin.Context) {
	var req models.PhoneSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	key := clientKey(c)
	machine, ok := h.Registry.Lookup(key)
	if !ok {
		utils.RespondError(c, utils.NewError(utils.KindSessionNotFound, ""))
		return
	}
	identity, ok := machine.Identity(req.SessionHandle)
	if !ok {
		utils.RespondError(c, utils.NewError(utils.KindSessionNotFound, ""))
		return
	}
	h.signIn(c, key, identity, models.ProfileFields{Name: req.Name, Email: req.Email})
}

// The machine is kept while session setup fails so the client can retry without a new code.
func (h *PhoneAuthHandler) signIn(c *gin.Context, key string, identity models.VerifiedIdentity, fields models.ProfileFields) {
	resp, err := h.Sessions.SignIn(c.Request.Context(), identity, fields)
	if err != nil {
		getLogger(c).Warn("Phone verified but session setup failed", zap.String("uid", identity.UID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	h.Registry.Release(key)
	c.JSON(http.StatusOK, resp)
}

// CancelHandler abandons the pending verification.
func (h *PhoneAuthHandler) CancelHandler(c *gin.Context) {
	machine, ok := h.Registry.Lookup(clientKey(c))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": phoneauth.Idle.String()})
		return
	}
	if err := machine.Cancel(); err != nil {
		utils.RespondError(c, err)
		return
	}
	state, _ := machine.State()
	c.JSON(http.StatusOK, gin.H{"state": state.String()})
}

// StatusHandler reports the client's current verification state.
func (h *PhoneAuthHandler) StatusHandler(c *gin.Context) {
	machine, ok := h.Registry.Lookup(clientKey(c))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": phoneauth.Idle.String()})
		return
	}
	state, reason := machine.State()
	body := gin.H{"state": state.String()}
	if state == phoneauth.Failed {
		body["reason"] = reason.String()
	}
	c.JSON(http.StatusOK, body)
}

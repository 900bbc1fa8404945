package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Phone verification
	RequestPhoneCodeHandler gin.HandlerFunc
	VerifyPhoneCodeHandler  gin.HandlerFunc
	CompletePhoneSession    gin.HandlerFunc
	CancelPhoneHandler      gin.HandlerFunc
	PhoneStatusHandler      gin.HandlerFunc

	// Email and Firebase sign-in
	SignupHandler           gin.HandlerFunc
	LoginHandler            gin.HandlerFunc
	FirebaseExchangeHandler gin.HandlerFunc

	// Profile
	GetProfileHandler    gin.HandlerFunc
	UpdateProfileHandler gin.HandlerFunc

	// Studio
	UploadFileHandler    gin.HandlerFunc
	GenerateHandler      gin.HandlerFunc
	LookbookHandler      gin.HandlerFunc
	LookbookImageHandler gin.HandlerFunc
	CatalogHandler       gin.HandlerFunc
}

// NewHandlerBundle wires every handler's routes into a bundle.
func NewHandlerBundle(phone *PhoneAuthHandler, auth *AuthHandler, profile *ProfileHandler, uploads *StorageHandler, studio *StudioHandler) *HandlerBundle {
	return &HandlerBundle{
		RequestPhoneCodeHandler: phone.RequestCodeHandler,
		VerifyPhoneCodeHandler:  phone.VerifyCodeHandler,
		CompletePhoneSession:    phone.CompleteSessionHandler,
		CancelPhoneHandler:      phone.CancelHandler,
		PhoneStatusHandler:      phone.StatusHandler,

		SignupHandler:           auth.SignupHandler,
		LoginHandler:            auth.LoginHandler,
		FirebaseExchangeHandler: auth.FirebaseExchangeHandler,

		GetProfileHandler:    profile.GetProfileHandler,
		UpdateProfileHandler: profile.UpdateProfileHandler,

		UploadFileHandler:    uploads.UploadFileHandler,
		GenerateHandler:      studio.GenerateHandler,
		LookbookHandler:      studio.LookbookHandler,
		LookbookImageHandler: studio.LookbookImageHandler,
		CatalogHandler:       studio.CatalogHandler,
	}
}

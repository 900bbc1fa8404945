package models

// PhoneCodeRequest starts a phone verification.
type PhoneCodeRequest struct {
	PhoneNumber    string `json:"phoneNumber" binding:"required"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// PhoneCodeResponse carries the opaque handle for the pending verification.
type PhoneCodeResponse struct {
	SessionHandle string `json:"sessionHandle"`
	State         string `json:"state"`
}

// PhoneVerifyRequest completes a phone verification.
type PhoneVerifyRequest struct {
	SessionHandle string `json:"sessionHandle" binding:"required"`
	Code          string `json:"code"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
}

// PhoneSessionRequest retries profile setup for a verified phone session.
type PhoneSessionRequest struct {
	SessionHandle string `json:"sessionHandle" binding:"required"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
}

// EmailSignupRequest creates an email/password account.
type EmailSignupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// EmailLoginRequest signs in with email/password.
type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IDTokenRequest exchanges a Firebase ID token for a studio session.
type IDTokenRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

package utils

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// ErrorKind is the closed set of failures the API reports to callers.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindInvalidPhoneNumber
	KindInvalidCode
	KindRateLimited
	KindChallengeExpired
	KindCodeExpired
	KindCodeMismatch
	KindTooManyAttempts
	KindSessionNotFound
	KindOTPChannelUnavailable
	KindProfileStoreUnavailable
	KindLedgerUpdateFailed
	KindInsufficientCredits
	KindGenerationFailed
	KindStorageUnavailable
	KindNotFound
	KindUnauthorized
)

var kindNames = map[ErrorKind]string{
	KindInternal:                "Internal",
	KindInvalidInput:            "InvalidInput",
	KindInvalidPhoneNumber:      "InvalidPhoneNumber",
	KindInvalidCode:             "InvalidCode",
	KindRateLimited:             "RateLimited",
	KindChallengeExpired:        "ChallengeExpired",
	KindCodeExpired:             "CodeExpired",
	KindCodeMismatch:            "CodeMismatch",
	KindTooManyAttempts:         "TooManyAttempts",
	KindSessionNotFound:         "SessionNotFound",
	KindOTPChannelUnavailable:   "OTPChannelUnavailable",
	KindProfileStoreUnavailable: "ProfileStoreUnavailable",
	KindLedgerUpdateFailed:      "LedgerUpdateFailed",
	KindInsufficientCredits:     "InsufficientCredits",
	KindGenerationFailed:        "GenerationFailed",
	KindStorageUnavailable:      "StorageUnavailable",
	KindNotFound:                "NotFound",
	KindUnauthorized:            "Unauthorized",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// IsTransient reports whether the kind is an infrastructure failure worth a plain retry.
func (k ErrorKind) IsTransient() bool {
	switch k {
	case KindOTPChannelUnavailable, KindProfileStoreUnavailable, KindLedgerUpdateFailed,
		KindGenerationFailed, KindStorageUnavailable:
		return true
	}
	return false
}

// ExposesDetail reports whether the detail text is safe to return to the caller.
func (k ErrorKind) ExposesDetail() bool {
	switch k {
	case KindInvalidInput, KindInvalidPhoneNumber, KindInvalidCode:
		return true
	}
	return false
}

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidInput, KindInvalidPhoneNumber, KindInvalidCode:
		return http.StatusBadRequest
	case KindRateLimited, KindTooManyAttempts:
		return http.StatusTooManyRequests
	case KindChallengeExpired, KindCodeExpired, KindSessionNotFound:
		return http.StatusGone
	case KindCodeMismatch, KindUnauthorized:
		return http.StatusUnauthorized
	case KindInsufficientCredits:
		return http.StatusPaymentRequired
	case KindNotFound:
		return http.StatusNotFound
	case KindGenerationFailed:
		return http.StatusBadGateway
	case KindOTPChannelUnavailable, KindProfileStoreUnavailable, KindLedgerUpdateFailed, KindStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// AppError carries a taxonomy kind across package boundaries.
type AppError struct {
	Kind       ErrorKind
	Detail     string
	RetryAfter time.Duration
	Err        error
}

func (e *AppError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError builds an AppError without an underlying cause.
func NewError(kind ErrorKind, detail string) *AppError {
	return &AppError{Kind: kind, Detail: detail}
}

// WrapError builds an AppError around cause.
func WrapError(kind ErrorKind, cause error, detail string) *AppError {
	return &AppError{Kind: kind, Detail: detail, Err: cause}
}

// RateLimitedError reports a cooldown with the time left before a retry is accepted.
func RateLimitedError(retryAfter time.Duration, detail string) *AppError {
	return &AppError{Kind: KindRateLimited, Detail: detail, RetryAfter: retryAfter}
}

// KindOf returns the taxonomy kind of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// RetryAfterOf returns the cooldown attached to err, if any.
func RetryAfterOf(err error) time.Duration {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.RetryAfter
	}
	return 0
}

// RetryAfterSeconds rounds a cooldown up to whole seconds.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// UserMessage returns the short human-readable message and the suggested next action for kind.
func UserMessage(kind ErrorKind, retryAfter time.Duration) (string, string) {
	switch kind {
	case KindInvalidInput:
		return "The request is missing or has invalid fields.", "Check the highlighted fields and try again."
	case KindInvalidPhoneNumber:
		return "Invalid phone number. Please check the format.", "Enter the number in international format, for example +15551234567."
	case KindInvalidCode:
		return "The verification code must be exactly 6 digits.", "Enter the 6-digit code from the SMS."
	case KindRateLimited:
		return "Too many verification requests.", fmt.Sprintf("Please wait %s before trying again.", humanWait(retryAfter))
	case KindChallengeExpired:
		return "The security check expired.", "Complete the security check again and request a new code."
	case KindCodeExpired:
		return "Verification code has expired.", "Request a new code."
	case KindCodeMismatch:
		return "Invalid verification code.", "Check the code and try again."
	case KindTooManyAttempts:
		return "Too many attempts.", fmt.Sprintf("Please wait %s before trying again.", humanWait(retryAfter))
	case KindSessionNotFound:
		return "No verification in progress.", "Request a new code."
	case KindOTPChannelUnavailable:
		return "We could not reach the verification service.", "Please try again in a moment."
	case KindProfileStoreUnavailable:
		return "We could not load your profile.", "Please try again in a moment."
	case KindLedgerUpdateFailed:
		return "Your image was created but we could not update your balance.", "Please refresh. Contact support if your balance looks wrong."
	case KindInsufficientCredits:
		return "You have used all your generations.", "Contact support to purchase more generations."
	case KindGenerationFailed:
		return "Image generation failed.", "Please try again. You have not been charged."
	case KindStorageUnavailable:
		return "We could not store your image.", "Please try again in a moment."
	case KindNotFound:
		return "Not found.", "Check the link and try again."
	case KindUnauthorized:
		return "You need to sign in.", "Sign in and try again."
	}
	return "Something went wrong.", "Please try again. Contact support if it keeps happening."
}

func humanWait(d time.Duration) string {
	if d <= 0 {
		return "a moment"
	}
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", RetryAfterSeconds(d))
	}
	minutes := int(math.Ceil(d.Minutes()))
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

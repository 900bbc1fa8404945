package phoneauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"fashionstudio/models"
	"fashionstudio/utils"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// IdentityToolkitChannel sends and confirms SMS codes through Firebase Authentication.
type IdentityToolkitChannel struct {
	svc *identitytoolkit.Service
}

// NewIdentityToolkitChannel wraps a relying party client built by NewIdentityToolkitService.
func NewIdentityToolkitChannel(svc *identitytoolkit.Service) *IdentityToolkitChannel {
	return &IdentityToolkitChannel{svc: svc}
}

// NewIdentityToolkitService builds the relying party client shared by the phone and password flows.
func NewIdentityToolkitService(ctx context.Context, apiKey string) (*identitytoolkit.Service, error) {
	if apiKey == "" {
		return nil, errors.New("identity toolkit: FIREBASE_API_KEY is required")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity toolkit: failed to create service: %w", err)
	}
	return svc, nil
}

func (c *IdentityToolkitChannel) SendCode(ctx context.Context, phoneNumber, assertion string) (string, error) {
	resp, err := c.svc.Relyingparty.SendVerificationCode(&identitytoolkit.IdentitytoolkitRelyingpartySendVerificationCodeRequest{
		PhoneNumber:    phoneNumber,
		RecaptchaToken: assertion,
	}).Context(ctx).Do()
	if err != nil {
		return "", MapIdentityToolkitError(err)
	}
	if resp.SessionInfo == "" {
		return "", utils.NewError(utils.KindOTPChannelUnavailable, "empty session info")
	}
	return resp.SessionInfo, nil
}

func (c *IdentityToolkitChannel) ConfirmCode(ctx context.Context, sessionInfo, code string) (models.VerifiedIdentity, error) {
	resp, err := c.svc.Relyingparty.VerifyPhoneNumber(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPhoneNumberRequest{
		SessionInfo: sessionInfo,
		Code:        code,
	}).Context(ctx).Do()
	if err != nil {
		return models.VerifiedIdentity{}, MapIdentityToolkitError(err)
	}
	if resp.LocalId == "" {
		return models.VerifiedIdentity{}, utils.NewError(utils.KindOTPChannelUnavailable, "verification returned no uid")
	}
	return models.VerifiedIdentity{
		UID:         resp.LocalId,
		PhoneNumber: resp.PhoneNumber,
		Provider:    models.AuthMethodPhone,
	}, nil
}

// identityToolkitKinds maps the leading error code of an Identity Toolkit message to a taxonomy kind.
var identityToolkitKinds = map[string]utils.ErrorKind{
	"INVALID_PHONE_NUMBER":        utils.KindInvalidPhoneNumber,
	"MISSING_PHONE_NUMBER":        utils.KindInvalidPhoneNumber,
	"CAPTCHA_CHECK_FAILED":        utils.KindChallengeExpired,
	"MISSING_RECAPTCHA_TOKEN":     utils.KindChallengeExpired,
	"INVALID_RECAPTCHA_TOKEN":     utils.KindChallengeExpired,
	"QUOTA_EXCEEDED":              utils.KindRateLimited,
	"TOO_MANY_ATTEMPTS_TRY_LATER": utils.KindTooManyAttempts,
	"INVALID_CODE":                utils.KindCodeMismatch,
	"MISSING_CODE":                utils.KindInvalidCode,
	"SESSION_EXPIRED":             utils.KindCodeExpired,
	"CODE_EXPIRED":                utils.KindCodeExpired,
	"INVALID_SESSION_INFO":        utils.KindSessionNotFound,
	"MISSING_SESSION_INFO":        utils.KindSessionNotFound,
	"EMAIL_EXISTS":                utils.KindInvalidInput,
	"INVALID_EMAIL":               utils.KindInvalidInput,
	"WEAK_PASSWORD":               utils.KindInvalidInput,
	"MISSING_PASSWORD":            utils.KindInvalidInput,
	"EMAIL_NOT_FOUND":             utils.KindUnauthorized,
	"INVALID_PASSWORD":            utils.KindUnauthorized,
	"INVALID_LOGIN_CREDENTIALS":   utils.KindUnauthorized,
	"USER_DISABLED":               utils.KindUnauthorized,
}

var identityToolkitDetails = map[string]string{
	"EMAIL_EXISTS":  "an account with this email already exists",
	"INVALID_EMAIL": "email address is malformed",
	"WEAK_PASSWORD": "password must be at least 6 characters",
}

// MapIdentityToolkitError converts an Identity Toolkit failure into an *utils.AppError.
// Unknown API errors and transport failures become OTPChannelUnavailable.
func MapIdentityToolkitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.WrapError(utils.KindOTPChannelUnavailable, err, "request timed out")
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return utils.WrapError(utils.KindOTPChannelUnavailable, err, "network failure")
		}
		return utils.WrapError(utils.KindOTPChannelUnavailable, err, "")
	}

	code := identityToolkitCode(apiErr)
	if kind, ok := identityToolkitKinds[code]; ok {
		return utils.WrapError(kind, err, identityToolkitDetails[code])
	}
	if apiErr.Code == 429 {
		return utils.WrapError(utils.KindRateLimited, err, "")
	}
	return utils.WrapError(utils.KindOTPChannelUnavailable, err, code)
}

// identityToolkitCode extracts "INVALID_PHONE_NUMBER" from messages like
// "INVALID_PHONE_NUMBER : Invalid format.".
func identityToolkitCode(apiErr *googleapi.Error) string {
	msg := apiErr.Message
	if msg == "" && len(apiErr.Errors) > 0 {
		msg = apiErr.Errors[0].Message
	}
	code, _, _ := strings.Cut(strings.TrimSpace(msg), " ")
	return strings.TrimSuffix(code, ":")
}

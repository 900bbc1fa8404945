package session

import (
	"context"
	"net/mail"
	"strings"

	"fashionstudio/models"
	"fashionstudio/services/phoneauth"
	"fashionstudio/utils"

	"go.uber.org/zap"
)

const minPasswordLength = 6

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", utils.NewError(utils.KindInvalidInput, "email address is malformed")
	}
	return strings.ToLower(addr.Address), nil
}

// SignUpWithEmail creates the account, then the profile with the starting grant.
func (s *DefaultSessionService) SignUpWithEmail(ctx context.Context, req models.EmailSignupRequest) (*models.SessionResponse, error) {
	if err := requireProvider("email", s.Passwords); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, utils.NewError(utils.KindInvalidInput, "password must be at least 6 characters")
	}
	fields := models.ProfileFields{Name: strings.TrimSpace(req.Name), Email: email}
	if req.PhoneNumber != "" {
		phone, ok := phoneauth.NormalizePhoneNumber(req.PhoneNumber)
		if !ok {
			return nil, utils.NewError(utils.KindInvalidPhoneNumber, "phone number must be in E.164 format")
		}
		fields.PhoneNumber = phone
	}

	identity, err := s.Passwords.SignUp(ctx, email, req.Password, fields.Name)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Email account created", zap.String("uid", identity.UID))
	return s.SignIn(ctx, identity, fields)
}

// SignInWithEmail checks the credentials and refreshes the profile login time.
func (s *DefaultSessionService) SignInWithEmail(ctx context.Context, req models.EmailLoginRequest) (*models.SessionResponse, error) {
	if err := requireProvider("email", s.Passwords); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	identity, err := s.Passwords.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.SignIn(ctx, identity, models.ProfileFields{Email: email})
}

// ExchangeIDToken turns a Firebase client session into a studio session.
func (s *DefaultSessionService) ExchangeIDToken(ctx context.Context, idToken string) (*models.SessionResponse, error) {
	if err := requireProvider("firebase", s.IDTokens); err != nil {
		return nil, err
	}
	identity, err := s.IDTokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.SignIn(ctx, identity, models.ProfileFields{})
}

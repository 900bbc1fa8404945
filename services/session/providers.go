package session

import (
	"context"
	"fmt"

	"fashionstudio/models"
	"fashionstudio/services/phoneauth"
	"fashionstudio/utils"

	"firebase.google.com/go/v4/auth"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
)

// IdentityToolkitPasswords creates and signs in email/password accounts through Firebase Authentication.
type IdentityToolkitPasswords struct {
	svc *identitytoolkit.Service
}

// NewIdentityToolkitPasswords wraps an Identity Toolkit relying party client.
func NewIdentityToolkitPasswords(svc *identitytoolkit.Service) *IdentityToolkitPasswords {
	return &IdentityToolkitPasswords{svc: svc}
}

func (p *IdentityToolkitPasswords) SignUp(ctx context.Context, email, password, displayName string) (models.VerifiedIdentity, error) {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return models.VerifiedIdentity{}, phoneauth.MapIdentityToolkitError(err)
	}
	return models.VerifiedIdentity{UID: resp.LocalId, Email: resp.Email, Provider: models.AuthMethodPassword}, nil
}

func (p *IdentityToolkitPasswords) SignIn(ctx context.Context, email, password string) (models.VerifiedIdentity, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return models.VerifiedIdentity{}, phoneauth.MapIdentityToolkitError(err)
	}
	return models.VerifiedIdentity{UID: resp.LocalId, Email: resp.Email, Provider: models.AuthMethodPassword}, nil
}

// FirebaseIDTokens verifies ID tokens minted by the Firebase client SDK.
type FirebaseIDTokens struct {
	client *auth.Client
}

// NewFirebaseIDTokens wraps the Firebase Auth client.
func NewFirebaseIDTokens(client *auth.Client) *FirebaseIDTokens {
	return &FirebaseIDTokens{client: client}
}

func (f *FirebaseIDTokens) VerifyIDToken(ctx context.Context, idToken string) (models.VerifiedIdentity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenExpired(err) || auth.IsIDTokenInvalid(err) {
			return models.VerifiedIdentity{}, utils.WrapError(utils.KindUnauthorized, err, "")
		}
		return models.VerifiedIdentity{}, utils.WrapError(utils.KindOTPChannelUnavailable, err, "token verification failed")
	}
	return identityFromToken(token), nil
}

func identityFromToken(token *auth.Token) models.VerifiedIdentity {
	identity := models.VerifiedIdentity{UID: token.UID, Provider: models.AuthMethodFirebase}
	if phone, ok := token.Claims["phone_number"].(string); ok {
		identity.PhoneNumber = phone
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	switch token.Firebase.SignInProvider {
	case "phone":
		identity.Provider = models.AuthMethodPhone
	case "password":
		identity.Provider = models.AuthMethodPassword
	}
	return identity
}

func requireProvider(name string, provider any) error {
	if provider == nil {
		return utils.NewError(utils.KindOTPChannelUnavailable, fmt.Sprintf("%s sign-in is not configured", name))
	}
	return nil
}

// models/user.go
package models

import "time"

// Auth methods recorded on the profile.
const (
	AuthMethodPhone    = "phone"
	AuthMethodPassword = "password"
	AuthMethodFirebase = "firebase"
)

// UserProfile is the stored profile document for a studio user.
// The credit fields are only ever written by profile creation and the ledger spend.
type UserProfile struct {
	ID                   string     `json:"id" bson:"_id" firestore:"-"`
	Name                 string     `json:"name" bson:"name" firestore:"name"`
	Email                string     `json:"email,omitempty" bson:"email,omitempty" firestore:"email"`
	PhoneNumber          string     `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty" firestore:"phoneNumber"`
	AuthMethod           string     `json:"authMethod" bson:"authMethod" firestore:"authMethod"`
	IsPhoneVerified      bool       `json:"isPhoneVerified" bson:"isPhoneVerified" firestore:"isPhoneVerified"`
	IsEmailVerified      bool       `json:"isEmailVerified" bson:"isEmailVerified" firestore:"isEmailVerified"`
	AccountStatus        string     `json:"accountStatus" bson:"accountStatus" firestore:"accountStatus"`
	RemainingGenerations int64      `json:"remainingGenerations" bson:"remainingGenerations" firestore:"remainingGenerations"`
	TotalGenerations     int64      `json:"totalGenerations" bson:"totalGenerations" firestore:"totalGenerations"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	LastLoginAt          time.Time  `json:"lastLoginAt" bson:"lastLoginAt" firestore:"lastLoginAt"`
	LastGeneratedAt      *time.Time `json:"lastGeneratedAt,omitempty" bson:"lastGeneratedAt,omitempty" firestore:"lastGeneratedAt,omitempty"`
}

// CanGenerate reports whether the last known balance allows starting a generation.
func (p *UserProfile) CanGenerate() bool {
	return p != nil && p.RemainingGenerations > 0
}

// ProfileFields are optional values merged into a profile at creation time.
type ProfileFields struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ProfileUpdate is the settings payload. Only display name and email are writable.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// VerifiedIdentity is what an identity provider confirmed about the caller.
type VerifiedIdentity struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	Provider    string `json:"provider"`
}

// SessionResponse is returned by every sign-in route.
type SessionResponse struct {
	Token   string       `json:"token"`
	Profile *UserProfile `json:"profile"`
}

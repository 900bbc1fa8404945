package phoneauth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"

	"fashionstudio/models"
	"fashionstudio/utils"

	"github.com/google/uuid"
)

// ChallengeSource yields a freshly solved human/bot assertion for one code request.
type ChallengeSource interface {
	Assertion(ctx context.Context) (string, error)
}

// ClientToken is an assertion the client solved and sent along with its request.
type ClientToken string

func (t ClientToken) Assertion(context.Context) (string, error) {
	if t == "" {
		return "", utils.NewError(utils.KindChallengeExpired, "missing challenge token")
	}
	return string(t), nil
}

// OTPChannel delivers SMS codes and confirms them.
// Implementations return *utils.AppError values; raw transport errors never leave the adapter.
type OTPChannel interface {
	// SendCode sends a code to phoneNumber and returns the channel's session info.
	SendCode(ctx context.Context, phoneNumber, assertion string) (string, error)
	// ConfirmCode checks code against the channel session.
	ConfirmCode(ctx context.Context, sessionInfo, code string) (models.VerifiedIdentity, error)
}

const (
	stubCodeTTL     = 5 * time.Minute
	stubMaxAttempts = 5
)

type stubSession struct {
	phone     string
	expiresAt time.Time
	attempts  int
}

// StubChannel accepts every well-formed number and one fixed code. Development only.
type StubChannel struct {
	code string
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*stubSession
}

// NewStubChannel creates a StubChannel that confirms the given code.
func NewStubChannel(code string) *StubChannel {
	return &StubChannel{code: code, now: time.Now, sessions: make(map[string]*stubSession)}
}

func (s *StubChannel) SendCode(_ context.Context, phoneNumber, assertion string) (string, error) {
	if assertion == "" {
		return "", utils.NewError(utils.KindChallengeExpired, "missing challenge token")
	}
	sessionInfo := "stub:" + uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionInfo] = &stubSession{phone: phoneNumber, expiresAt: s.now().Add(stubCodeTTL)}
	return sessionInfo, nil
}

func (s *StubChannel) ConfirmCode(_ context.Context, sessionInfo, code string) (models.VerifiedIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionInfo]
	if !ok {
		return models.VerifiedIdentity{}, utils.NewError(utils.KindSessionNotFound, "unknown session")
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, sessionInfo)
		return models.VerifiedIdentity{}, utils.NewError(utils.KindCodeExpired, "")
	}
	if sess.attempts >= stubMaxAttempts {
		return models.VerifiedIdentity{}, utils.NewError(utils.KindTooManyAttempts, "")
	}
	sess.attempts++
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.code)) != 1 {
		return models.VerifiedIdentity{}, utils.NewError(utils.KindCodeMismatch, "")
	}

	delete(s.sessions, sessionInfo)
	return models.VerifiedIdentity{
		UID:         StubUID(sess.phone),
		PhoneNumber: sess.phone,
		Provider:    models.AuthMethodPhone,
	}, nil
}

// StubUID derives a stable uid for a phone number.
func StubUID(phone string) string {
	sum := sha256.Sum256([]byte(phone))
	return "stub-" + hex.EncodeToString(sum[:10])
}

package phoneauth

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"fashionstudio/models"
	"fashionstudio/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds the cooldown windows of a Machine.
type Config struct {
	// NumberCooldown is the minimum gap between two codes sent to one number.
	NumberCooldown time.Duration
	// GlobalCooldown blocks every request from a client after the channel throttled it.
	GlobalCooldown time.Duration
	// AssertionTTL is how long a spent challenge assertion is remembered.
	AssertionTTL time.Duration
}

// DefaultConfig returns the standard 5 minute / 15 minute windows.
func DefaultConfig() Config {
	return Config{
		NumberCooldown: 5 * time.Minute,
		GlobalCooldown: 15 * time.Minute,
		AssertionTTL:   10 * time.Minute,
	}
}

type pendingSession struct {
	handle      string
	phone       string
	sessionInfo string
}

// verifiedSession keeps a confirmed identity behind the handle that earned it.
type verifiedSession struct {
	handle   string
	identity models.VerifiedIdentity
}

// Machine drives one client's phone verification flow.
//
// Idle -> CodeRequested -> CodeSent -> Verifying -> Verified, or Failed.
// The mutex guards transitions only; channel calls run unlocked. Every
// accepted requestCode and every cancel bumps the epoch, and a call that
// returns under a stale epoch leaves the state alone (last request wins).
type Machine struct {
	clientKey string
	channel   OTPChannel
	store     CooldownStore
	cfg       Config
	now       func() time.Time
	log       *zap.Logger

	mu        sync.Mutex
	state     State
	failure   utils.ErrorKind
	epoch     uint64
	session   *pendingSession
	verified  *verifiedSession
	lastTouch time.Time
}

// NewMachine creates an Idle machine for clientKey.
func NewMachine(clientKey string, channel OTPChannel, store CooldownStore, cfg Config) *Machine {
	return &Machine{
		clientKey: clientKey,
		channel:   channel,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
		log:       utils.GetLogger().With(zap.String("client", clientKey)),
		lastTouch: time.Now(),
	}
}

// State returns the current state and, for Failed, its reason.
func (m *Machine) State() (State, utils.ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.failure
}

func (m *Machine) idleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTouch
}

// transition applies next only if no newer request or cancel happened since epoch.
func (m *Machine) transition(epoch uint64, next State, session *pendingSession) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return false
	}
	m.state = next
	m.session = session
	m.lastTouch = m.now()
	return true
}

// RequestCode validates phone, enforces the cooldowns, spends a fresh challenge
// assertion and asks the channel to send a code. It returns the opaque handle
// for VerifyCode. Any earlier session of this machine is discarded.
func (m *Machine) RequestCode(ctx context.Context, phone string, challenge ChallengeSource) (string, error) {
	normalized, ok := NormalizePhoneNumber(phone)
	if !ok {
		return "", utils.NewError(utils.KindInvalidPhoneNumber, "phone number must be in E.164 format")
	}
	masked := utils.MaskPhone(normalized)
	now := m.now()

	if until, ok, err := m.store.GlobalUntil(ctx, m.clientKey); err != nil {
		m.log.Warn("Cooldown store unavailable, skipping global cooldown check", zap.Error(err))
	} else if ok && until.After(now) {
		return "", utils.RateLimitedError(until.Sub(now), "global cooldown active")
	}

	if last, ok, err := m.store.LastRequest(ctx, normalized); err != nil {
		m.log.Warn("Cooldown store unavailable, skipping number cooldown check", zap.String("phone", masked), zap.Error(err))
	} else if ok {
		if remaining := m.cfg.NumberCooldown - now.Sub(last); remaining > 0 {
			return "", utils.RateLimitedError(remaining, "code recently sent to this number")
		}
	}

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.state = CodeRequested
	m.failure = utils.KindInternal
	m.session = nil
	m.lastTouch = now
	m.mu.Unlock()

	assertion, err := challenge.Assertion(ctx)
	if err != nil {
		m.transition(epoch, Idle, nil)
		if utils.KindOf(err) == utils.KindInternal {
			err = utils.WrapError(utils.KindChallengeExpired, err, "")
		}
		return "", err
	}

	claimed, err := m.store.ClaimAssertion(ctx, assertion, m.cfg.AssertionTTL)
	if err != nil {
		m.log.Warn("Cooldown store unavailable, challenge reuse not checked", zap.Error(err))
		claimed = true
	}
	if !claimed {
		m.transition(epoch, Idle, nil)
		return "", utils.NewError(utils.KindChallengeExpired, "challenge assertion already used")
	}

	sessionInfo, err := m.channel.SendCode(ctx, normalized, assertion)
	if err != nil {
		m.transition(epoch, Idle, nil)
		switch kind := utils.KindOf(err); kind {
		case utils.KindRateLimited, utils.KindTooManyAttempts:
			until := m.now().Add(m.cfg.GlobalCooldown)
			if serr := m.store.SetGlobal(ctx, m.clientKey, until); serr != nil {
				m.log.Warn("Failed to persist global cooldown", zap.Error(serr))
			}
			m.log.Info("OTP channel throttled client", zap.String("phone", masked), zap.Duration("cooldown", m.cfg.GlobalCooldown))
			return "", &utils.AppError{Kind: utils.KindRateLimited, Detail: "verification service throttled this client", RetryAfter: m.cfg.GlobalCooldown, Err: err}
		case utils.KindInternal:
			return "", utils.WrapError(utils.KindOTPChannelUnavailable, err, "")
		default:
			return "", err
		}
	}

	if err := m.store.RecordRequest(ctx, normalized, m.now(), m.cfg.NumberCooldown); err != nil {
		m.log.Warn("Failed to record number cooldown", zap.String("phone", masked), zap.Error(err))
	}

	session := &pendingSession{handle: uuid.New().String(), phone: normalized, sessionInfo: sessionInfo}
	if !m.transition(epoch, CodeSent, session) {
		return "", utils.NewError(utils.KindSessionNotFound, "superseded by a newer request")
	}
	m.log.Info("Verification code sent", zap.String("phone", masked))
	return session.handle, nil
}

// VerifyCode confirms code for the session behind handle and returns the verified identity.
// Malformed codes are rejected without contacting the channel. A failed attempt keeps
// the session usable, except TooManyAttempts which ends the flow and starts the global cooldown.
func (m *Machine) VerifyCode(ctx context.Context, handle, code string) (models.VerifiedIdentity, error) {
	if !ValidCode(code) {
		return models.VerifiedIdentity{}, utils.NewError(utils.KindInvalidCode, "code must be exactly 6 digits")
	}

	m.mu.Lock()
	if m.state == Verifying && m.session != nil && m.session.handle == handle {
		m.mu.Unlock()
		return models.VerifiedIdentity{}, utils.NewError(utils.KindInvalidInput, "a verification for this session is already in progress")
	}
	if m.state != CodeSent || m.session == nil || m.session.handle != handle {
		m.mu.Unlock()
		return models.VerifiedIdentity{}, utils.NewError(utils.KindSessionNotFound, "")
	}
	m.state = Verifying
	m.lastTouch = m.now()
	epoch := m.epoch
	session := m.session
	m.mu.Unlock()

	identity, err := m.channel.ConfirmCode(ctx, session.sessionInfo, code)
	if err != nil {
		kind := utils.KindOf(err)
		if kind == utils.KindInternal {
			kind = utils.KindOTPChannelUnavailable
			err = utils.WrapError(kind, err, "")
		}

		switch kind {
		case utils.KindTooManyAttempts:
			if !m.fail(epoch, kind) {
				return models.VerifiedIdentity{}, utils.NewError(utils.KindSessionNotFound, "")
			}
			until := m.now().Add(m.cfg.GlobalCooldown)
			if serr := m.store.SetGlobal(ctx, m.clientKey, until); serr != nil {
				m.log.Warn("Failed to persist global cooldown", zap.Error(serr))
			}
			m.log.Info("Too many verification attempts", zap.String("phone", utils.MaskPhone(session.phone)))
			return models.VerifiedIdentity{}, &utils.AppError{Kind: kind, RetryAfter: m.cfg.GlobalCooldown, Err: err}
		case utils.KindSessionNotFound:
			m.transition(epoch, Idle, nil)
		default:
			m.transition(epoch, CodeSent, session)
		}
		return models.VerifiedIdentity{}, err
	}

	if identity.PhoneNumber == "" {
		identity.PhoneNumber = session.phone
	}
	if identity.Provider == "" {
		identity.Provider = models.AuthMethodPhone
	}
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return models.VerifiedIdentity{}, utils.NewError(utils.KindSessionNotFound, "verification was cancelled")
	}
	m.state = Verified
	m.session = nil
	m.verified = &verifiedSession{handle: session.handle, identity: identity}
	m.lastTouch = m.now()
	m.mu.Unlock()
	m.log.Info("Phone number verified", zap.String("phone", utils.MaskPhone(identity.PhoneNumber)))
	return identity, nil
}

func (m *Machine) fail(epoch uint64, reason utils.ErrorKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return false
	}
	m.state = Failed
	m.failure = reason
	m.session = nil
	m.lastTouch = m.now()
	return true
}

// Cancel discards any pending session or in-flight request and returns to Idle.
// It is rejected once the flow reached Verified or Failed.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Terminal() {
		return utils.NewError(utils.KindInvalidInput, "verification already finished")
	}
	m.epoch++
	m.state = Idle
	m.session = nil
	m.lastTouch = m.now()
	return nil
}

// Reset returns a finished machine to Idle so a new flow can start.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.state = Idle
	m.failure = utils.KindInternal
	m.session = nil
	m.verified = nil
	m.lastTouch = m.now()
}

// Identity returns the identity confirmed under handle by the last successful
// verification. Session setup can be retried from it while the machine stays Verified.
func (m *Machine) Identity(handle string) (models.VerifiedIdentity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Verified || m.verified == nil || handle == "" {
		return models.VerifiedIdentity{}, false
	}
	if subtle.ConstantTimeCompare([]byte(m.verified.handle), []byte(handle)) != 1 {
		return models.VerifiedIdentity{}, false
	}
	return m.verified.identity, true
}

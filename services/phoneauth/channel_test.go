package phoneauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"fashionstudio/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestStubChannelFlow(t *testing.T) {
	ch := NewStubChannel("123456")
	ctx := context.Background()

	info, err := ch.SendCode(ctx, testPhone, "token")
	require.NoError(t, err)

	_, err = ch.ConfirmCode(ctx, info, "654321")
	assert.True(t, utils.IsKind(err, utils.KindCodeMismatch))

	id, err := ch.ConfirmCode(ctx, info, "123456")
	require.NoError(t, err)
	assert.Equal(t, StubUID(testPhone), id.UID)
	assert.Equal(t, testPhone, id.PhoneNumber)

	_, err = ch.ConfirmCode(ctx, info, "123456")
	assert.True(t, utils.IsKind(err, utils.KindSessionNotFound))
}

func TestStubChannelLimitsAndExpiry(t *testing.T) {
	clock := newFakeClock()
	ch := NewStubChannel("123456")
	ch.now = clock.Now
	ctx := context.Background()

	info, err := ch.SendCode(ctx, testPhone, "token")
	require.NoError(t, err)
	for i := 0; i < stubMaxAttempts; i++ {
		_, err = ch.ConfirmCode(ctx, info, "000000")
		require.True(t, utils.IsKind(err, utils.KindCodeMismatch))
	}
	_, err = ch.ConfirmCode(ctx, info, "123456")
	assert.True(t, utils.IsKind(err, utils.KindTooManyAttempts))

	info, err = ch.SendCode(ctx, testPhone, "token-2")
	require.NoError(t, err)
	clock.Advance(stubCodeTTL + time.Second)
	_, err = ch.ConfirmCode(ctx, info, "123456")
	assert.True(t, utils.IsKind(err, utils.KindCodeExpired))

	_, err = ch.SendCode(ctx, testPhone, "")
	assert.True(t, utils.IsKind(err, utils.KindChallengeExpired))
}

func TestStubUIDIsStable(t *testing.T) {
	assert.Equal(t, StubUID(testPhone), StubUID(testPhone))
	assert.NotEqual(t, StubUID(testPhone), StubUID("+15557654321"))
}

func TestMapIdentityToolkitError(t *testing.T) {
	cases := []struct {
		message string
		want    utils.ErrorKind
	}{
		{"INVALID_PHONE_NUMBER : Invalid format.", utils.KindInvalidPhoneNumber},
		{"CAPTCHA_CHECK_FAILED", utils.KindChallengeExpired},
		{"QUOTA_EXCEEDED", utils.KindRateLimited},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", utils.KindTooManyAttempts},
		{"INVALID_CODE", utils.KindCodeMismatch},
		{"SESSION_EXPIRED", utils.KindCodeExpired},
		{"INVALID_SESSION_INFO", utils.KindSessionNotFound},
		{"EMAIL_EXISTS", utils.KindInvalidInput},
		{"WEAK_PASSWORD : Password should be at least 6 characters", utils.KindInvalidInput},
		{"INVALID_LOGIN_CREDENTIALS", utils.KindUnauthorized},
		{"SOMETHING_NEW", utils.KindOTPChannelUnavailable},
	}
	for _, tc := range cases {
		err := MapIdentityToolkitError(&googleapi.Error{Code: 400, Message: tc.message})
		assert.Equal(t, tc.want, utils.KindOf(err), tc.message)
	}
}

func TestMapIdentityToolkitErrorFallbacks(t *testing.T) {
	assert.Nil(t, MapIdentityToolkitError(nil))

	err := MapIdentityToolkitError(&googleapi.Error{Code: 429})
	assert.Equal(t, utils.KindRateLimited, utils.KindOf(err))

	err = MapIdentityToolkitError(&googleapi.Error{Code: 400, Errors: []googleapi.ErrorItem{{Message: "INVALID_CODE"}}})
	assert.Equal(t, utils.KindCodeMismatch, utils.KindOf(err))

	err = MapIdentityToolkitError(context.DeadlineExceeded)
	assert.Equal(t, utils.KindOTPChannelUnavailable, utils.KindOf(err))

	err = MapIdentityToolkitError(errors.New("boom"))
	assert.Equal(t, utils.KindOTPChannelUnavailable, utils.KindOf(err))
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, ok := NormalizePhoneNumber("+1 (555) 123-4567")
	require.True(t, ok)
	assert.Equal(t, testPhone, got)

	got, ok = NormalizePhoneNumber("+447911123456")
	require.True(t, ok)
	assert.Equal(t, "+447911123456", got)

	_, ok = NormalizePhoneNumber("07911123456")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	clock := newFakeClock()
	ch := &fakeChannel{}
	reg := NewRegistry(ch, NewMemoryCooldownStore(), DefaultConfig(), 10*time.Minute)
	reg.now = clock.Now

	a := reg.Machine("a")
	assert.Same(t, a, reg.Machine("a"))
	reg.Machine("b")
	assert.Equal(t, 2, reg.Len())

	_, ok := reg.Lookup("c")
	assert.False(t, ok)

	clock.Advance(5 * time.Minute)
	require.NoError(t, reg.Machine("b").Cancel())
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, reg.Sweep())
	_, ok = reg.Lookup("a")
	assert.False(t, ok)
	_, ok = reg.Lookup("b")
	assert.True(t, ok)

	reg.Release("b")
	assert.Equal(t, 0, reg.Len())
}

package utils

import (
	"testing"
	"time"

	"fashionstudio/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })
	config.AppConfig.JWTSecret = "unit-test-secret"

	token, err := GenerateToken("uid-1", "phone", time.Hour)
	require.NoError(t, err)

	sub, err := ExtractIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sub)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("uid-1", "phone", -time.Minute)
	require.NoError(t, err)

	_, err = ExtractIDFromToken(token)
	assert.Error(t, err)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })

	config.AppConfig.JWTSecret = "one"
	token, err := GenerateToken("uid-1", "password", time.Hour)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "two"
	_, err = ExtractIDFromToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresSubject(t *testing.T) {
	_, err := GenerateToken("", "phone", time.Hour)
	assert.Error(t, err)
}

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboyoz/hotline/internal/twilio"
)

func TestTokenCommand(t *testing.T) {
	isolate(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("TWILIO_API_KEY", "SK1")
	t.Setenv("TWILIO_API_SECRET", "secret")
	t.Setenv("TWILIO_APP_SID", "AP1")

	out, err := runCLI(t, "token", "yoz", "--ttl", "10m")
	require.NoError(t, err)

	claims := &twilio.AccessTokenClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "yoz", claims.Grants.Identity)
	assert.Equal(t, "AP1", claims.Grants.Voice.Outgoing.ApplicationSid)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenCommand_MissingCredentials(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "token", "yoz")
	assert.Error(t, err)
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("64f0c0ffee", "ana", true)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee", claims.Subject)
	assert.Equal(t, "ana", claims.Handle)
	assert.True(t, claims.IsAdmin)
}

func TestParseRejects(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService("another", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("id", "ana", false)
	require.NoError(t, err)
	_, err = svc.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	expired, err := svc.Issue("id", "ana", false)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.Parse(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	svc, err := NewTokenService("x", 0)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, svc.TTL())
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaker(accessTTL, refreshTTL time.Duration) *MakerImpl {
	return NewMaker("access-secret", accessTTL, "refresh-secret", refreshTTL)
}

func TestMaker_AccessTokenRoundTrip(t *testing.T) {
	maker := newTestMaker(15*time.Minute, 7*24*time.Hour)

	token, err := maker.GenerateAccessToken("user-123", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserUID)
	assert.Equal(t, "admin", claims.Role)
}

func TestMaker_RefreshTokenRoundTrip(t *testing.T) {
	maker := newTestMaker(15*time.Minute, 7*24*time.Hour)

	token, err := maker.GenerateRefreshToken("user-123")
	require.NoError(t, err)

	uid, err := maker.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", uid)
}

func TestMaker_ExpiredAccessToken(t *testing.T) {
	maker := newTestMaker(-time.Minute, 7*24*time.Hour)

	token, err := maker.GenerateAccessToken("user-123", "user")
	require.NoError(t, err)

	_, err = maker.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestMaker_TamperedToken(t *testing.T) {
	maker := newTestMaker(15*time.Minute, 7*24*time.Hour)

	token, err := maker.GenerateAccessToken("user-123", "user")
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "xxxx"
	_, err = maker.ParseAccessToken(tampered)
	assert.Error(t, err)
}

func TestMaker_SecretsAreDistinct(t *testing.T) {
	maker := newTestMaker(15*time.Minute, 7*24*time.Hour)

	// an access token must not pass as a refresh token and vice versa
	accessToken, err := maker.GenerateAccessToken("user-123", "user")
	require.NoError(t, err)
	_, err = maker.ParseRefreshToken(accessToken)
	assert.Error(t, err)

	refreshToken, err := maker.GenerateRefreshToken("user-123")
	require.NoError(t, err)
	_, err = maker.ParseAccessToken(refreshToken)
	assert.Error(t, err)
}

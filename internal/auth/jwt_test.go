package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "smartlabs", time.Hour)

	token, exp, err := tm.Generate("user-1", RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "smartlabs", claims.Issuer)
}

func TestTokenManager_RejectsForeignToken(t *testing.T) {
	tm := NewTokenManager("secret", "smartlabs", time.Hour)
	other := NewTokenManager("different", "smartlabs", time.Hour)

	token, _, err := other.Generate("user-1", RoleAdmin)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", "smartlabs", -time.Minute)

	token, _, err := tm.Generate("user-1", RoleUser)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("hunter2", hash))
	assert.Error(t, VerifyPassword("hunter3", hash))
}

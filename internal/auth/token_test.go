package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rtc-usersig/internal/auth"
)

var issuedAt = time.Unix(1700000000, 0)

func TestGenerateAndParse(t *testing.T) {
	tm := auth.NewTokenManager(1400000001, "test-secret", 7*24*time.Hour)

	token, exp, err := tm.GenerateToken("alice", issuedAt)
	require.NoError(t, err)
	assert.True(t, exp.Equal(issuedAt.Add(7*24*time.Hour)))

	claims, err := tm.ParseToken(token, issuedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, int64(1400000001), claims.SDKAppID)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestGenerateIsDeterministic(t *testing.T) {
	tm := auth.NewTokenManager(1, "test-secret", time.Hour)

	a, _, err := tm.GenerateToken("alice", issuedAt)
	require.NoError(t, err)
	b, _, err := tm.GenerateToken("alice", issuedAt.Add(300*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseRejectsExpired(t *testing.T) {
	tm := auth.NewTokenManager(1, "test-secret", time.Minute)
	token, _, err := tm.GenerateToken("alice", issuedAt)
	require.NoError(t, err)

	_, err = tm.ParseToken(token, issuedAt.Add(2*time.Minute))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := auth.NewTokenManager(1, "secret-1", time.Hour).GenerateToken("alice", issuedAt)
	require.NoError(t, err)

	_, err = auth.NewTokenManager(1, "secret-2", time.Hour).ParseToken(token, issuedAt)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseRejectsOtherApplication(t *testing.T) {
	token, _, err := auth.NewTokenManager(1, "secret", time.Hour).GenerateToken("alice", issuedAt)
	require.NoError(t, err)

	_, err = auth.NewTokenManager(2, "secret", time.Hour).ParseToken(token, issuedAt)
	assert.Error(t, err)
}

func TestGenerateRejectsEmptyUser(t *testing.T) {
	_, _, err := auth.NewTokenManager(1, "secret", time.Hour).GenerateToken("", issuedAt)
	assert.Error(t, err)
}

// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")

	userID := uuid.New()
	token, err := GenerateAccessToken(userID, "dana", "CUSTOMER", 1)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "dana", claims.Username)
	assert.Equal(t, "CUSTOMER", claims.Role)
	assert.Equal(t, "shoploop", claims.Issuer)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")
	token, err := GenerateAccessToken(uuid.New(), "dana", "CUSTOMER", 1)
	require.NoError(t, err)

	SetJWTSecrets("different-secret", "refresh-secret")
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenRejectsExpired(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")
	token, err := GenerateAccessToken(uuid.New(), "dana", "CUSTOMER", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")
	userID := uuid.New()

	accessToken, err := GenerateAccessToken(userID, "dana", "CUSTOMER", 1)
	require.NoError(t, err)
	refreshToken, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	// Access token fails refresh validation and vice versa: different
	// signing secrets.
	_, err = ValidateRefreshToken(accessToken)
	assert.Error(t, err)
	_, err = ValidateAccessToken(refreshToken)
	assert.Error(t, err)
}

func TestRefreshTokensCarryUniqueIDs(t *testing.T) {
	SetJWTSecrets("access-secret", "refresh-secret")
	userID := uuid.New()

	a, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)
	b, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, HashString(a), HashString(b))
}

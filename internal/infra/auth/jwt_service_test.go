package auth

import (
	"testing"
	"time"

	"accounts/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidateTokens(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	accountID := uuid.New()
	accessToken, refreshToken, err := issuer.GenerateTokens(accountID)
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	accessClaims, err := issuer.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, accountID, accessClaims.AccountID)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)

	refreshClaims, err := issuer.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, accountID, refreshClaims.AccountID)
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.Type)
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	accessToken, refreshToken, err := issuer.GenerateTokens(uuid.New())
	require.NoError(t, err)

	_, err = issuer.ValidateRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	_, err = issuer.ValidateAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTService_InvalidToken(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)
	issuer := svc.(*jwtService)

	issued := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return issued }
	accessToken, _, err := issuer.GenerateTokens(uuid.New())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ValidateAccessToken(accessToken)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestJWTService_HashTokenIsStable(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	assert.Equal(t, issuer.HashToken("abc"), issuer.HashToken("abc"))
	assert.NotEqual(t, issuer.HashToken("abc"), issuer.HashToken("abd"))
	assert.Len(t, issuer.HashToken("abc"), 64)
}

func TestNewJWTService_RequiresSecrets(t *testing.T) {
	cfg := newTestConfig()
	cfg.SecretKey.Refresh = ""

	_, err := NewJWTService(cfg)

	assert.Error(t, err)
}

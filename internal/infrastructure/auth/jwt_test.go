package auth

import (
	"testing"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "burbarshop",
	}
	return NewJWTService(cfg)
}

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", Issuer: "burbarshop"})

	assert.Equal(t, []byte("s"), svc.secret)
	assert.Equal(t, "burbarshop", svc.issuer)
	assert.Equal(t, DefaultTokenExpiration, svc.GetTokenExpiration())
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()

	tok, err := svc.GenerateToken(GenerateTokenInput{Subject: "owner", Email: "owner@burbarshop.com"})

	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Subject)
	assert.Equal(t, "owner@burbarshop.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "burbarshop", claims.Issuer)
	assert.WithinDuration(t, tok.ExpiresAt, claims.GetExpiresAtTime(), time.Second)
}

func TestGenerateToken_RequiresSubjectAndSecret(t *testing.T) {
	_, err := newTestJWTService().GenerateToken(GenerateTokenInput{Subject: "  "})
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = NewJWTService(config.JWTConfig{}).GenerateToken(GenerateTokenInput{Subject: "owner"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestValidateToken_NonAdminRole(t *testing.T) {
	svc := newTestJWTService()
	tok, err := svc.GenerateToken(GenerateTokenInput{Subject: "packer", Role: "staff"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok.AccessToken)

	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := svc.GenerateToken(GenerateTokenInput{Subject: "owner"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok.AccessToken)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	tok, err := svc.GenerateToken(GenerateTokenInput{Subject: "owner"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok.AccessToken)

	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not.a.jwt")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_DifferentSecret(t *testing.T) {
	tok, err := newTestJWTService().GenerateToken(GenerateTokenInput{Subject: "owner"})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "a-completely-different-secret-key", Issuer: "burbarshop"})
	_, err = other.ValidateToken(tok.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	tok, err := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"}).
		GenerateToken(GenerateTokenInput{Subject: "owner"})
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(tok.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			Issuer:    "burbarshop",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleAdmin,
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(unsigned)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

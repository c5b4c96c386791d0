package auth

import (
	"testing"
	"time"

	"github.com/atlas-procurement/request-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTValidator_ValidToken(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, Issuer: "procurement-idp"})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "jsmith",
		"name":  "Jane Smith",
		"email": "jane@example.com",
		"iss":   "procurement-idp",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	principal, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "jsmith", principal.Username)
	assert.Equal(t, "Jane Smith", principal.DisplayName)
	assert.Equal(t, "jane@example.com", principal.Email)
}

func TestJWTValidator_DisplayNameFallsBackToUsername(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub": "jsmith",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "jsmith", principal.DisplayName)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub": "jsmith",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	tokenString := signToken(t, "some-other-secret", jwt.MapClaims{
		"sub": "jsmith",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, Issuer: "procurement-idp"})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub": "jsmith",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_MissingSubject(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidator_NoSecretConfigured(t *testing.T) {
	validator := NewJWTValidator(&config.AuthConfig{})

	_, err := validator.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

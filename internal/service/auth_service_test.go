package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-scheduler/internal/models"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(expiresIn time.Duration) models.JWTClaims {
	now := time.Now()
	return models.JWTClaims{
		UserID: "user-1",
		Role:   models.RoleAdmin,
		Email:  "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret})

	claims, err := svc.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret})

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(time.Hour)),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(-time.Hour)),
		"wrong alg":    signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(time.Hour)),
		"garbage":      "not-a-token",
		"no subject": func() string {
			c := validClaims(time.Hour)
			c.UserID = ""
			return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
		}(),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAuthServiceLeeway(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(-30*time.Second))

	strict := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret})
	_, err := strict.ValidateToken(token)
	assert.Error(t, err)

	lenient := NewAuthService(nil, AuthConfig{AccessTokenSecret: testSecret, Leeway: time.Minute})
	_, err = lenient.ValidateToken(token)
	assert.NoError(t, err)
}

package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(role models.UserRole) models.JWTClaims {
	now := time.Now()
	return models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		Email:  "director@example.org",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ethics-idp",
			Audience:  jwt.ClaimStrings{"ethics-case-api"},
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestIdentityServiceValidateToken(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "secret", Issuer: "ethics-idp", Audience: "ethics-case-api"})

	claims, err := svc.ValidateToken(signToken(t, "secret", validClaims(models.RoleDirector)))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleDirector, claims.Role)
	require.Equal(t, models.Actor{ID: "user-1", Role: models.RoleDirector}, models.ActorFromClaims(claims))
}

func TestIdentityServiceRejectsBadTokens(t *testing.T) {
	svc := NewIdentityService(IdentityConfig{Secret: "secret", Issuer: "ethics-idp", Audience: "ethics-case-api"})

	expired := validClaims(models.RoleAnalyst)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims(models.RoleAnalyst)
	wrongIssuer.Issuer = "someone-else"

	unknownRole := validClaims(models.UserRole("JANITOR"))

	noSubject := validClaims(models.RoleAnalyst)
	noSubject.UserID = ""

	tokens := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": signToken(t, "other", validClaims(models.RoleAnalyst)),
		"expired":      signToken(t, "secret", expired),
		"issuer":       signToken(t, "secret", wrongIssuer),
		"role":         signToken(t, "secret", unknownRole),
		"subject":      signToken(t, "secret", noSubject),
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.ErrorIs(t, err, appErrors.ErrUnauthorized)
		})
	}
}

package auth_test

import (
	"testing"
	"time"

	auth "github.com/hauslet/go-auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaimsAccessors(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(time.Hour)

	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-id",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UID:       "account-id",
		UserEmail: "tenant@example.com",
		UserRole:  "tenant",
	}

	assert.Equal(t, "subject-id", claims.Subject())
	assert.Equal(t, "account-id", claims.UserID())
	assert.Equal(t, "tenant@example.com", claims.Email())
	assert.Equal(t, "tenant", claims.Role())
	assert.Equal(t, issued, claims.IssuedAt())
	assert.Equal(t, expires, claims.Expires())
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
	}
	assert.Equal(t, "subject-id", claims.UserID())
}

func TestJWTClaimsRoleChecks(t *testing.T) {
	tenant := &auth.JWTClaims{UserRole: "tenant"}
	admin := &auth.JWTClaims{UserRole: "admin"}

	assert.True(t, tenant.HasRole(auth.RoleTenant))
	assert.False(t, tenant.HasRole(auth.RoleAdmin))
	assert.True(t, tenant.Satisfies(auth.RoleTenant))
	assert.False(t, tenant.Satisfies(auth.RoleAgent))

	// HasRole is an exact match, Satisfies honors the admin superset
	assert.False(t, admin.HasRole(auth.RoleTenant))
	assert.True(t, admin.Satisfies(auth.RoleTenant))
	assert.True(t, admin.Satisfies(auth.RoleAgent))
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &auth.JWTClaims{}
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

package jwtutil

import (
	"strings"
	"testing"
	"time"

	"notes-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identity = Identity{
	UserID:     "0190a6d2-0000-7000-8000-000000000001",
	Email:      "admin@acme.test",
	Role:       "admin",
	TenantID:   "0190a6d2-0000-7000-8000-0000000000aa",
	TenantSlug: "acme",
}

func newUtil(key string) *JWTUtil {
	return NewJWTUtil(&config.JWTConfig{SigningKey: key, ExpirationHours: 168})
}

func TestIssueAndVerify(t *testing.T) {
	j := newUtil("secret")

	token, err := j.Issue(identity)
	require.NoError(t, err)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, 7*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	j := newUtil("secret")
	token, err := j.Issue(identity)
	require.NoError(t, err)

	_, err = newUtil("other-secret").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = j.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err = j.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	j := newUtil("secret")
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	j.now = func() time.Time { return issuedAt }

	token, err := j.Issue(identity)
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := UserClaims{
		UserID:   identity.UserID,
		TenantID: identity.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newUtil("secret").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresTenantClaims(t *testing.T) {
	j := newUtil("secret")
	token, err := j.Issue(Identity{UserID: "u1", Email: "x@y.z", Role: "member"})
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

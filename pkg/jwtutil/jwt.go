package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"notes-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification:
// bad signature, malformed input, wrong algorithm or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the payload signed into a session token
type Identity struct {
	UserID     string
	Email      string
	Role       string
	TenantID   string
	TenantSlug string
}

// UserClaims represents the JWT claims for an authenticated session
type UserClaims struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantID   string `json:"tenantId"`
	TenantSlug string `json:"tenantSlug"`
	jwt.RegisteredClaims
}

// Identity returns the identity part of the claims
func (c *UserClaims) Identity() Identity {
	return Identity{
		UserID:     c.UserID,
		Email:      c.Email,
		Role:       c.Role,
		TenantID:   c.TenantID,
		TenantSlug: c.TenantSlug,
	}
}

// JWTUtil issues and verifies HS256 session tokens
type JWTUtil struct {
	signingKey []byte
	lifetime   time.Duration
	now        func() time.Time
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		signingKey: []byte(cfg.SigningKey),
		lifetime:   time.Duration(cfg.ExpirationHours) * time.Hour,
		now:        time.Now,
	}
}

// Lifetime returns how long issued tokens stay valid
func (j *JWTUtil) Lifetime() time.Duration {
	return j.lifetime
}

// Issue creates a signed token for the identity
func (j *JWTUtil) Issue(id Identity) (string, error) {
	if len(j.signingKey) == 0 {
		return "", errors.New("JWT signing key not configured")
	}

	now := j.now()
	claims := UserClaims{
		UserID:     id.UserID,
		Email:      id.Email,
		Role:       id.Role,
		TenantID:   id.TenantID,
		TenantSlug: id.TenantSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// Verify validates the token and returns its claims. Any failure yields
// ErrInvalidToken; the cause is wrapped for logging only.
func (j *JWTUtil) Verify(tokenString string) (*UserClaims, error) {
	if len(j.signingKey) == 0 || tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

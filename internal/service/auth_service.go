package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/pkg/errs"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"

	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong passwords
var ErrInvalidCredentials = errs.Unauthenticated("Invalid credentials")

// Session is the result of a successful login
type Session struct {
	Token  string
	User   *model.User
	Tenant *model.Tenant
}

// AuthService authenticates users and resolves session identities
type AuthService struct {
	users   *repository.UserStore
	tenants *repository.TenantStore
	hasher  *PasswordHasher
	tokens  *jwtutil.JWTUtil
}

func NewAuthService(users *repository.UserStore, tenants *repository.TenantStore, hasher *PasswordHasher, tokens *jwtutil.JWTUtil) *AuthService {
	return &AuthService{users: users, tenants: tenants, hasher: hasher, tokens: tokens}
}

// Authenticate verifies email and password and issues a session token
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errs.Invalid("email", "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Burn(password)
		log.Warn("Login rejected", zap.String("reason", "unknown_email"))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errs.Wrap(err, "look up user")
	}

	if !s.hasher.Matches(user.Password, password) {
		log.Warn("Login rejected", zap.String("reason", "password_mismatch"), zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.tenants.FindByID(ctx, user.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Error("User references missing tenant",
			zap.String("user_id", user.ID),
			zap.String("tenant_id", user.TenantID))
		return nil, errs.IntegrityFault("Tenant configuration error", err)
	}
	if err != nil {
		return nil, errs.Wrap(err, "look up tenant")
	}

	token, err := s.tokens.Issue(jwtutil.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
	})
	if err != nil {
		return nil, errs.Wrap(err, "issue token")
	}

	log.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenant.ID),
		zap.String("role", string(user.Role)))

	return &Session{Token: token, User: user, Tenant: tenant}, nil
}

// Resolve verifies a bearer token and confirms the user it names still
// exists in the same tenant with the same email.
func (s *AuthService) Resolve(ctx context.Context, token string) (jwtutil.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return jwtutil.Identity{}, errs.Unauthenticated("Invalid or expired token")
	}

	user, err := s.users.FindInTenant(ctx, claims.TenantID, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && user.Email != claims.Email) {
		return jwtutil.Identity{}, errs.Unauthenticated("Authentication required")
	}
	if err != nil {
		return jwtutil.Identity{}, errs.Wrap(err, "resolve session user")
	}

	return claims.Identity(), nil
}

// Profile returns the acting user's record and tenant
func (s *AuthService) Profile(ctx context.Context, actor jwtutil.Identity) (*model.User, *model.Tenant, error) {
	user, err := s.users.FindInTenant(ctx, actor.TenantID, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errs.Unauthenticated("Authentication required")
	}
	if err != nil {
		return nil, nil, errs.Wrap(err, "load profile")
	}

	tenant, err := s.tenants.FindByID(ctx, actor.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errs.IntegrityFault("Tenant configuration error", fmt.Errorf("tenant %s: %w", actor.TenantID, err))
	}
	if err != nil {
		return nil, nil, errs.Wrap(err, "load tenant")
	}

	return user, tenant, nil
}

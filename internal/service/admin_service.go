package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/pkg/errs"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"go.uber.org/zap"
)

// InviteInput is the new user requested by an admin
type InviteInput struct {
	Email    string
	Password string
	Role     model.Role
}

// AdminService implements tenant administration: invitations and plan changes.
// Every operation requires an admin acting on their own tenant.
type AdminService struct {
	tenants   *repository.TenantStore
	users     *repository.UserStore
	hasher    *PasswordHasher
	freeLimit int
	now       func() time.Time
}

func NewAdminService(tenants *repository.TenantStore, users *repository.UserStore, hasher *PasswordHasher, freeLimit int) *AdminService {
	return &AdminService{tenants: tenants, users: users, hasher: hasher, freeLimit: freeLimit, now: time.Now}
}

// authorize resolves slug to a tenant the actor may administer.
// Checks run in order: role, tenant existence, tenant ownership.
func (s *AdminService) authorize(ctx context.Context, actor jwtutil.Identity, slug, action, scope string) (*model.Tenant, error) {
	if model.Role(actor.Role) != model.RoleAdmin {
		return nil, errs.Forbidden("Access denied. Only admins can " + action + ".")
	}

	tenant, err := s.tenants.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NotFoundf("Tenant not found")
	}
	if err != nil {
		return nil, errs.Wrap(err, "look up tenant")
	}

	if tenant.ID != actor.TenantID {
		logger.FromContext(ctx).Warn("Cross-tenant administration rejected",
			zap.String("user_id", actor.UserID),
			zap.String("tenant_id", actor.TenantID),
			zap.String("target_slug", slug))
		return nil, errs.Forbidden("Access denied. You can only " + scope + ".")
	}
	return tenant, nil
}

// Invite creates a user in the actor's tenant
func (s *AdminService) Invite(ctx context.Context, actor jwtutil.Identity, slug string, in InviteInput) (*model.User, *model.Tenant, error) {
	tenant, err := s.authorize(ctx, actor, slug, "invite users", "invite users to your own tenant")
	if err != nil {
		prometheus.RecordTenantOperation("invite", "denied")
		return nil, nil, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, nil, errs.Invalid("email", "Email and password are required")
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, nil, errs.Invalid("password", "Password must be at most 72 bytes")
	}
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidRole(role) {
		return nil, nil, errs.Invalid("role", `Role must be either "admin" or "member"`)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, errs.Wrap(err, "check email")
	}
	if exists {
		return nil, nil, errs.Conflictf("A user with this email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, errs.Wrap(err, "hash password")
	}

	invitedBy := actor.UserID
	user := &model.User{
		Email:     email,
		Password:  hash,
		Role:      role,
		TenantID:  tenant.ID,
		InvitedBy: &invitedBy,
	}
	// The unique index still guards against a concurrent invite of the same email.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, errs.Conflictf("A user with this email already exists")
		}
		return nil, nil, errs.Wrap(err, "create user")
	}

	logger.FromContext(ctx).Info("User invited",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenant.ID),
		zap.String("role", string(role)),
		zap.String("invited_by", actor.UserID))
	prometheus.RecordTenantOperation("invite", "success")

	return user, tenant, nil
}

// Upgrade moves the actor's tenant to the pro plan
func (s *AdminService) Upgrade(ctx context.Context, actor jwtutil.Identity, slug string) (*model.Tenant, error) {
	tenant, err := s.authorize(ctx, actor, slug, "upgrade subscriptions", "upgrade your own tenant")
	if err != nil {
		prometheus.RecordTenantOperation("upgrade", "denied")
		return nil, err
	}
	if tenant.Plan == model.PlanPro {
		return nil, errs.Invalid("plan", "Tenant is already on Pro plan")
	}

	return s.changePlan(ctx, tenant, "upgrade", repository.PlanChange{
		From:        model.PlanFree,
		To:          model.PlanPro,
		NoteLimit:   model.UnlimitedNotes,
		StampColumn: "upgraded_at",
		At:          s.now(),
	}, "Tenant is already on Pro plan")
}

// Downgrade moves the actor's tenant back to the free plan with the default note limit
func (s *AdminService) Downgrade(ctx context.Context, actor jwtutil.Identity, slug string) (*model.Tenant, error) {
	tenant, err := s.authorize(ctx, actor, slug, "manage subscriptions", "manage your own tenant")
	if err != nil {
		prometheus.RecordTenantOperation("downgrade", "denied")
		return nil, err
	}
	if tenant.Plan == model.PlanFree {
		return nil, errs.Invalid("plan", "Tenant is already on Free plan")
	}

	return s.changePlan(ctx, tenant, "downgrade", repository.PlanChange{
		From:        model.PlanPro,
		To:          model.PlanFree,
		NoteLimit:   s.freeLimit,
		StampColumn: "downgraded_at",
		At:          s.now(),
	}, "Tenant is already on Free plan")
}

func (s *AdminService) changePlan(ctx context.Context, tenant *model.Tenant, op string, ch repository.PlanChange, staleMsg string) (*model.Tenant, error) {
	updated, err := s.tenants.ChangePlan(ctx, tenant.ID, ch)
	if errors.Is(err, repository.ErrStaleState) {
		// a concurrent request already applied the same transition
		return nil, errs.Invalid("plan", staleMsg)
	}
	if err != nil {
		prometheus.RecordTenantOperation(op, "error")
		return nil, errs.Wrap(err, "change plan")
	}

	logger.FromContext(ctx).Info("Tenant plan changed",
		zap.String("tenant_id", tenant.ID),
		zap.String("from", string(ch.From)),
		zap.String("to", string(ch.To)))
	prometheus.RecordTenantOperation(op, "success")

	return updated, nil
}

// Package seed provisions demo tenants and users.
package seed

import (
	"context"
	"fmt"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/internal/service"
	"notes-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded account
const DefaultPassword = "password"

// Tenants lists the demo tenants by slug and display name
var Tenants = []struct{ Slug, Name string }{
	{"acme", "Acme"},
	{"globex", "Globex"},
}

// Result holds what Run created, keyed by email
type Result struct {
	Tenants map[string]*model.Tenant
	Users   map[string]*model.User
}

// Run wipes all notes, users and tenants and provisions the demo data.
// Each tenant gets admin@<slug>.test and user@<slug>.test on the free plan.
func Run(ctx context.Context, db *gorm.DB, hasher *service.PasswordHasher, freeLimit int) (*Result, error) {
	log := logger.FromContext(ctx)

	hash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	res := &Result{Tenants: map[string]*model.Tenant{}, Users: map[string]*model.User{}}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenants := repository.NewTenantStore(tx)
		users := repository.NewUserStore(tx)

		// children first, the foreign keys reference tenants
		if err := repository.NewNoteStore(tx).DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear notes: %w", err)
		}
		if err := users.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		if err := tenants.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear tenants: %w", err)
		}

		for _, t := range Tenants {
			tenant := &model.Tenant{Name: t.Name, Slug: t.Slug, Plan: model.PlanFree, NoteLimit: freeLimit}
			if err := tenants.Create(ctx, tenant); err != nil {
				return fmt.Errorf("create tenant %s: %w", t.Slug, err)
			}
			res.Tenants[t.Slug] = tenant

			for _, role := range []model.Role{model.RoleAdmin, model.RoleMember} {
				user := &model.User{
					Email:    accountEmail(role, t.Slug),
					Password: hash,
					Role:     role,
					TenantID: tenant.ID,
				}
				if err := users.Create(ctx, user); err != nil {
					return fmt.Errorf("create user %s: %w", user.Email, err)
				}
				res.Users[user.Email] = user
			}
			log.Info("Seeded tenant", zap.String("slug", t.Slug), zap.String("tenant_id", tenant.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func accountEmail(role model.Role, slug string) string {
	if role == model.RoleAdmin {
		return "admin@" + slug + ".test"
	}
	return "user@" + slug + ".test"
}

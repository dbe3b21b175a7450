package service

import (
	"context"
	"testing"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/internal/testutil"
	"notes-service/pkg/config"
	"notes-service/pkg/jwtutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password"

type fixture struct {
	db      *gorm.DB
	tenants *repository.TenantStore
	users   *repository.UserStore
	notes   *repository.NoteStore
	hasher  *PasswordHasher
	tokens  *jwtutil.JWTUtil

	auth  *AuthService
	quota *QuotaEngine
	note  *NoteService
	admin *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:      db,
		tenants: repository.NewTenantStore(db),
		users:   repository.NewUserStore(db),
		notes:   repository.NewNoteStore(db),
		hasher:  NewPasswordHasher(bcrypt.MinCost),
		tokens:  jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 168}),
	}
	f.auth = NewAuthService(f.users, f.tenants, f.hasher, f.tokens)
	f.quota = NewQuotaEngine(db, f.tenants, f.notes, 3)
	f.note = NewNoteService(f.notes, f.quota)
	f.admin = NewAdminService(f.tenants, f.users, f.hasher, 3)
	return f
}

// tenant provisions a free tenant with the default limit
func (f *fixture) tenant(t testutil.TB, slug string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: slug, Slug: slug, Plan: model.PlanFree, NoteLimit: 3}
	if err := f.tenants.Create(context.Background(), tenant); err != nil {
		t.Fatalf("create tenant %s: %v", slug, err)
	}
	return tenant
}

// member adds a user to tenant and returns its session identity
func (f *fixture) member(t testutil.TB, tenant *model.Tenant, email string, role model.Role) jwtutil.Identity {
	t.Helper()
	hash, err := f.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &model.User{Email: email, Password: hash, Role: role, TenantID: tenant.ID}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return jwtutil.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       string(role),
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
	}
}

func (f *fixture) createNote(t *testing.T, actor jwtutil.Identity, title string) *model.Note {
	t.Helper()
	note, err := f.note.Create(context.Background(), actor, title, "content of "+title)
	require.NoError(t, err)
	return note
}

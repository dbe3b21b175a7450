package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"notes-service/internal/model"
	"notes-service/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

func TestQuotaRejectsFourthNoteOnFreePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)

	for i := 0; i < 3; i++ {
		f.createNote(t, admin, fmt.Sprintf("note %d", i))
	}

	_, err := f.note.Create(ctx, admin, "one too many", "body")
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.QuotaExceeded, e.Code)
	assert.Equal(t, "Note limit reached", e.Message)
	require.NotNil(t, e.Quota)
	assert.Equal(t, int64(3), e.Quota.Limit)
	assert.Equal(t, int64(3), e.Quota.Current)
	assert.Equal(t, "free", e.Quota.Plan)

	count, err := f.notes.Count(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// upgrading lifts the limit for the same request
	_, err = f.admin.Upgrade(ctx, admin, "acme")
	require.NoError(t, err)
	_, err = f.note.Create(ctx, admin, "one too many", "body")
	assert.NoError(t, err)
}

func TestCheckQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)
	f.createNote(t, admin, "first")

	status, err := f.quota.CheckQuota(ctx, acme.ID, ResourceNotes)
	require.NoError(t, err)
	assert.Equal(t, QuotaStatus{Allowed: true, Limit: 3, Current: 1, Plan: model.PlanFree}, status)

	_, err = f.admin.Upgrade(ctx, admin, "acme")
	require.NoError(t, err)

	status, err = f.quota.CheckQuota(ctx, acme.ID, ResourceNotes)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, int64(model.UnlimitedNotes), status.Limit)
	assert.Equal(t, model.PlanPro, status.Plan)
}

func TestCheckQuotaFallsBackToDefaultLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	require.NoError(t, f.db.Model(&model.Tenant{}).Where("id = ?", acme.ID).Update("note_limit", 0).Error)

	status, err := f.quota.CheckQuota(ctx, acme.ID, ResourceNotes)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.Limit)
	assert.True(t, status.Allowed)
}

func TestCheckQuotaMissingTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.quota.CheckQuota(context.Background(), model.NewID(), ResourceNotes)
	assert.Equal(t, errs.Integrity, errs.CodeOf(err))
}

func TestAdmitDoesNotCallInsertWhenFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)
	for i := 0; i < 3; i++ {
		f.createNote(t, admin, fmt.Sprintf("note %d", i))
	}

	called := false
	_, err := f.quota.Admit(ctx, acme.ID, ResourceNotes, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	assert.Equal(t, errs.QuotaExceeded, errs.CodeOf(err))
	assert.False(t, called)
}

func TestConcurrentCreatesRespectQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.note.Create(ctx, admin, fmt.Sprintf("note %d", i), "body")
			mu.Lock()
			defer mu.Unlock()
			switch errs.CodeOf(err) {
			case "":
				admitted++
			case errs.QuotaExceeded:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	assert.Equal(t, attempts-3, rejected)

	count, err := f.notes.Count(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

// For any limit and any number of attempts, a free tenant holds exactly
// min(attempts, limit) notes and every rejection reports the full limit.
func TestQuotaBoundProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 5).Draw(rt, "limit")
		attempts := rapid.IntRange(0, 8).Draw(rt, "attempts")

		slug := "t-" + model.NewID()
		tenant := &model.Tenant{Name: slug, Slug: slug, Plan: model.PlanFree, NoteLimit: limit}
		require.NoError(rt, f.tenants.Create(ctx, tenant))
		user := &model.User{Email: slug + "@example.test", Password: "x", Role: model.RoleMember, TenantID: tenant.ID}
		require.NoError(rt, f.users.Create(ctx, user))

		admitted := 0
		for i := 0; i < attempts; i++ {
			note := &model.Note{Title: "n", Content: "c", UserID: user.ID, TenantID: tenant.ID}
			status, err := f.quota.Admit(ctx, tenant.ID, ResourceNotes, func(tx *gorm.DB) error {
				return f.notes.WithTx(tx).Create(ctx, note)
			})
			if err == nil {
				admitted++
				continue
			}
			require.Equal(rt, errs.QuotaExceeded, errs.CodeOf(err))
			require.Equal(rt, int64(limit), status.Limit)
			require.Equal(rt, int64(limit), status.Current)
		}

		want := attempts
		if want > limit {
			want = limit
		}
		require.Equal(rt, want, admitted)

		count, err := f.notes.Count(ctx, tenant.ID)
		require.NoError(rt, err)
		require.Equal(rt, int64(want), count)
	})
}

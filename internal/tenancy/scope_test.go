package tenancy

import (
	"context"
	"testing"

	"notes-service/internal/model"
	"notes-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestScopeAddsTenantPredicate(t *testing.T) {
	db := testutil.NewDB(t)

	stmt := db.Session(&gorm.Session{DryRun: true}).
		Scopes(Scope("tenant-a")).
		Where("id = ?", "note-1").
		Find(&[]model.Note{}).Statement

	assert.Contains(t, stmt.SQL.String(), "`notes`.`tenant_id` = ?")
	assert.Contains(t, stmt.Vars, "tenant-a")
}

func TestScopeWithoutTenantFails(t *testing.T) {
	db := testutil.NewDB(t)

	var notes []model.Note
	err := DB(context.Background(), db, "").Find(&notes).Error
	assert.ErrorIs(t, err, ErrMissingTenant)
}

func TestScopeFiltersRows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	a := model.Tenant{Name: "A", Slug: "a", Plan: model.PlanPro, NoteLimit: model.UnlimitedNotes}
	b := model.Tenant{Name: "B", Slug: "b", Plan: model.PlanPro, NoteLimit: model.UnlimitedNotes}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	ua := model.User{Email: "a@a.test", Password: "x", Role: model.RoleAdmin, TenantID: a.ID}
	ub := model.User{Email: "b@b.test", Password: "x", Role: model.RoleAdmin, TenantID: b.ID}
	require.NoError(t, db.Create(&ua).Error)
	require.NoError(t, db.Create(&ub).Error)

	require.NoError(t, db.Create(&model.Note{Title: "a1", Content: "c", UserID: ua.ID, TenantID: a.ID}).Error)
	require.NoError(t, db.Create(&model.Note{Title: "b1", Content: "c", UserID: ub.ID, TenantID: b.ID}).Error)

	var notes []model.Note
	require.NoError(t, DB(ctx, db, a.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "a1", notes[0].Title)

	var count int64
	require.NoError(t, DB(ctx, db, b.ID).Model(&model.Note{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

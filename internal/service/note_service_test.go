package service

import (
	"context"
	"testing"
	"time"

	"notes-service/internal/model"
	"notes-service/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNoteValidation(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)

	for _, tc := range []struct{ title, content string }{
		{"", "body"},
		{"title", ""},
		{"  ", "body"},
		{"title", "\n\t"},
	} {
		_, err := f.note.Create(context.Background(), admin, tc.title, tc.content)
		e, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, errs.Validation, e.Code)
		assert.Equal(t, "Title and content are required", e.Message)
	}
}

func TestCreateNoteTrimsTitle(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)

	note, err := f.note.Create(context.Background(), admin, "  Groceries  ", "milk")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", note.Title)
	assert.Equal(t, acme.ID, note.TenantID)
	assert.Equal(t, admin.UserID, note.UserID)
	assert.Equal(t, admin.Email, note.User.Email)
	assert.True(t, model.ValidID(note.ID))
}

func TestListNotesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.member(t, acme, "admin@acme.test", model.RoleAdmin)
	member := f.member(t, acme, "user@acme.test", model.RoleMember)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.note.now = func() time.Time { return base }
	f.createNote(t, admin, "older")
	f.note.now = func() time.Time { return base.Add(time.Minute) }
	f.createNote(t, member, "newer")

	notes, err := f.note.List(ctx, member)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "newer", notes[0].Title)
	assert.Equal(t, "user@acme.test", notes[0].User.Email)
	assert.Equal(t, "older", notes[1].Title)
	assert.Equal(t, "admin@acme.test", notes[1].User.Email)
}

func TestGetNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	acmeUser := f.member(t, acme, "user@acme.test", model.RoleMember)
	globexAdmin := f.member(t, globex, "admin@globex.test", model.RoleAdmin)
	note := f.createNote(t, acmeUser, "private")

	got, err := f.note.Get(ctx, acmeUser, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
	assert.Equal(t, "user@acme.test", got.User.Email)

	_, err = f.note.Get(ctx, acmeUser, "not-an-id")
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.Validation, e.Code)
	assert.Equal(t, "Invalid note ID", e.Message)

	// another tenant's note and a missing note look the same
	_, crossErr := f.note.Get(ctx, globexAdmin, note.ID)
	_, missingErr := f.note.Get(ctx, globexAdmin, model.NewID())
	assert.Equal(t, errs.NotFound, errs.CodeOf(crossErr))
	assert.Equal(t, missingErr.Error(), crossErr.Error())
}

func TestUpdateNoteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	owner := f.member(t, acme, "user@acme.test", model.RoleMember)
	colleague := f.member(t, acme, "admin@acme.test", model.RoleAdmin)
	outsider := f.member(t, globex, "admin@globex.test", model.RoleAdmin)
	note := f.createNote(t, owner, "mine")

	_, err := f.note.Update(ctx, colleague, note.ID, "hijack", "body")
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))

	_, err = f.note.Update(ctx, outsider, note.ID, "hijack", "body")
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))

	_, err = f.note.Update(ctx, owner, note.ID, "", "body")
	assert.Equal(t, errs.Validation, errs.CodeOf(err))

	updated, err := f.note.Update(ctx, owner, note.ID, "still mine", "new body")
	require.NoError(t, err)
	assert.Equal(t, "still mine", updated.Title)
	assert.Equal(t, "new body", updated.Content)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestDeleteNoteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	owner := f.member(t, acme, "user@acme.test", model.RoleMember)
	colleague := f.member(t, acme, "admin@acme.test", model.RoleAdmin)
	note := f.createNote(t, owner, "doomed")

	_, err := f.note.Delete(ctx, colleague, note.ID)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))

	_, err = f.note.Delete(ctx, owner, "123")
	assert.Equal(t, errs.Validation, errs.CodeOf(err))

	summary, err := f.note.Delete(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.Equal(t, &DeletedSummary{ID: note.ID, Title: "doomed"}, summary)

	_, err = f.note.Delete(ctx, owner, note.ID)
	assert.Equal(t, errs.NotFound, errs.CodeOf(err))

	// a deleted note frees its quota slot
	count, err := f.notes.Count(ctx, acme.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

package repository

import (
	"context"
	"time"

	"notes-service/internal/model"
	"notes-service/internal/tenancy"
	"notes-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// NoteStore reads and writes notes. Every method takes the tenant id and
// routes through tenancy.Scope; there is no unscoped accessor.
type NoteStore struct{ db *gorm.DB }

func NewNoteStore(db *gorm.DB) *NoteStore { return &NoteStore{db: db} }

func (s *NoteStore) WithTx(tx *gorm.DB) *NoteStore { return &NoteStore{db: tx} }

// primary pins reads to the write source so they observe a just-applied change
func primary(s *NoteStore) *NoteStore { return &NoteStore{db: s.db.Clauses(dbresolver.Write)} }

// withAuthor preloads the note's creator, restricted to the same tenant
func withAuthor(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(tenancy.Scope(tenantID)).Select("id", "email", "tenant_id")
		})
	}
}

// List returns the tenant's notes, newest first
func (s *NoteStore) List(ctx context.Context, tenantID string) ([]model.Note, error) {
	defer prometheus.TrackDBOperation("note_list")()
	var notes []model.Note
	err := tenancy.DB(ctx, s.db, tenantID).
		Scopes(withAuthor(tenantID)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Count returns how many notes the tenant holds
func (s *NoteStore) Count(ctx context.Context, tenantID string) (int64, error) {
	defer prometheus.TrackDBOperation("note_count")()
	var n int64
	err := tenancy.DB(ctx, s.db, tenantID).Model(&model.Note{}).Count(&n).Error
	return n, err
}

// Get loads a note by id within the tenant. Notes of other tenants are
// reported as ErrNotFound.
func (s *NoteStore) Get(ctx context.Context, tenantID, id string) (*model.Note, error) {
	defer prometheus.TrackDBOperation("note_query")()
	var n model.Note
	err := tenancy.DB(ctx, s.db, tenantID).
		Scopes(withAuthor(tenantID)).
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// Create inserts the note under its own TenantID
func (s *NoteStore) Create(ctx context.Context, n *model.Note) error {
	defer prometheus.TrackDBOperation("note_insert")()
	return translate(s.db.WithContext(ctx).Create(n).Error)
}

// UpdateOwned rewrites title and content of a note matched by id, tenant
// and owner in one statement. ErrNotFound covers both missing and foreign notes.
func (s *NoteStore) UpdateOwned(ctx context.Context, tenantID, userID, id, title, content string, at time.Time) (*model.Note, error) {
	defer prometheus.TrackDBOperation("note_update")()
	res := tenancy.DB(ctx, s.db, tenantID).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"title":      title,
			"content":    content,
			"updated_at": at,
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return primary(s).Get(ctx, tenantID, id)
}

// DeleteOwned removes a note matched by id, tenant and owner and returns
// the removed row.
func (s *NoteStore) DeleteOwned(ctx context.Context, tenantID, userID, id string) (*model.Note, error) {
	defer prometheus.TrackDBOperation("note_delete")()
	var deleted model.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tenancy.DB(ctx, tx, tenantID)).
			Where("id = ? AND user_id = ?", id, userID).
			First(&deleted).Error
		if err != nil {
			return translate(err)
		}
		res := tenancy.DB(ctx, tx, tenantID).
			Where("id = ? AND user_id = ?", id, userID).
			Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *NoteStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Note{}).Error
}

package repository

import (
	"context"
	"time"

	"notes-service/internal/model"
	"notes-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type TenantStore struct{ db *gorm.DB }

func NewTenantStore(db *gorm.DB) *TenantStore { return &TenantStore{db: db} }

// WithTx returns a store bound to tx
func (s *TenantStore) WithTx(tx *gorm.DB) *TenantStore { return &TenantStore{db: tx} }

func (s *TenantStore) Create(ctx context.Context, t *model.Tenant) error {
	defer prometheus.TrackDBOperation("tenant_insert")()
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *TenantStore) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("tenant_query")()
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// LockByID loads the tenant and holds its row lock until the surrounding
// transaction ends. The tenant row serializes quota-checked inserts.
func (s *TenantStore) LockByID(ctx context.Context, id string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("tenant_lock")()
	var t model.Tenant
	if err := forUpdate(s.db.WithContext(ctx)).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *TenantStore) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("tenant_query")()
	var t model.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// PlanChange describes a plan transition applied by ChangePlan
type PlanChange struct {
	From      model.Plan
	To        model.Plan
	NoteLimit int
	// StampColumn is "upgraded_at" or "downgraded_at"
	StampColumn string
	At          time.Time
}

// ChangePlan moves the tenant from one plan to another in a single
// conditional update. ErrStaleState means the tenant was not on ch.From.
func (s *TenantStore) ChangePlan(ctx context.Context, id string, ch PlanChange) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("tenant_update")()
	res := s.db.WithContext(ctx).
		Model(&model.Tenant{}).
		Where("id = ? AND plan = ?", id, ch.From).
		Updates(map[string]interface{}{
			"plan":         ch.To,
			"note_limit":   ch.NoteLimit,
			ch.StampColumn: ch.At,
			"updated_at":   ch.At,
		})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleState
	}
	return (&TenantStore{db: s.db.Clauses(dbresolver.Write)}).FindByID(ctx, id)
}

// DeleteAll removes every tenant. Used by seeding only.
func (s *TenantStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Tenant{}).Error
}

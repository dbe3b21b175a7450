package repository

import (
	"context"

	"notes-service/internal/model"
	"notes-service/internal/tenancy"
	"notes-service/prometheus"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) WithTx(tx *gorm.DB) *UserStore { return &UserStore{db: tx} }

// Create inserts u. ErrDuplicate means the email is already registered.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	defer prometheus.TrackDBOperation("user_insert")()
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

// FindByEmail looks a user up across all tenants. Email matching is exact.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("user_query")()
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// EmailExists reports whether any tenant already has a user with email
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	defer prometheus.TrackDBOperation("user_query")()
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindInTenant loads a user by id within tenantID
func (s *UserStore) FindInTenant(ctx context.Context, tenantID, id string) (*model.User, error) {
	defer prometheus.TrackDBOperation("user_query")()
	var u model.User
	err := tenancy.DB(ctx, s.db, tenantID).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.User{}).Error
}

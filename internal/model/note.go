package model

import (
	"time"

	"gorm.io/gorm"
)

// Note is a tenant-owned document. TenantID always equals the owner's tenant.
type Note struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(36);index:idx_notes_tenant_created,priority:1;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_notes_tenant_created,priority:2"`
	UpdatedAt time.Time `json:"updatedAt"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns a time-ordered id
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	return nil
}

// All returns every model managed by the service, in migration order
func All() []interface{} {
	return []interface{}{&Tenant{}, &User{}, &Note{}}
}

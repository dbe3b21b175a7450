package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's role within its tenant
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidRole reports whether r is an assignable role
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents the user model stored in the database.
// Email is unique across all tenants.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	TenantID  string    `json:"tenantId" gorm:"type:varchar(36);index;not null"`
	InvitedBy *string   `json:"invitedBy,omitempty" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

// BeforeCreate assigns a time-ordered id
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan is a tenant subscription plan
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"

	// UnlimitedNotes is the noteLimit sentinel for plans without a quota
	UnlimitedNotes = -1
)

// Tenant is an isolated organization and the unit of data partitioning
type Tenant struct {
	ID           string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(100);not null"`
	Slug         string     `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Plan         Plan       `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	NoteLimit    int        `json:"noteLimit" gorm:"not null;default:3"`
	UpgradedAt   *time.Time `json:"upgradedAt,omitempty"`
	DowngradedAt *time.Time `json:"downgradedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate assigns a time-ordered id
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

// Unlimited reports whether the tenant's plan has no note quota
func (t *Tenant) Unlimited() bool {
	return t.Plan == PlanPro || t.NoteLimit == UnlimitedNotes
}

// NewID returns a new UUIDv7 string. UUIDv7 sorts by creation time.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID reports whether s is a well-formed id
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

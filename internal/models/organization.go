package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the tenant root. It is never soft-deleted by the core;
// retirement of an organization is an external administrative action.
type Organization struct {
	ID              string `gorm:"type:uuid;primaryKey" json:"id"`
	Slug            string `gorm:"uniqueIndex;type:varchar(255);not null" json:"slug"`
	DefaultTimezone string `gorm:"type:varchar(100);not null" json:"defaultTimezone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (Organization) TableName() string { return "organizations" }

// User is a host: a person referenced by schedules and event types.
type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Timezone string `gorm:"type:varchar(100);not null" json:"timezone"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (User) TableName() string { return "users" }

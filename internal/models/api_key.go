package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey is an organization-scoped credential for machine callers:
// `bk_live_<64 hex>`, only its SHA-256 hash stored. Prefix is the first
// 12 characters of the plaintext key, kept unhashed so an operator can
// recognize a key in a key list without being able to reconstruct it.
type APIKey struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string     `gorm:"index;type:uuid;not null" json:"organizationId"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Prefix         string     `gorm:"type:varchar(16);not null" json:"prefix"`
	HashedKey      string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"-"`
	LastUsedAt     *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) (err error) {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return
}

func (APIKey) TableName() string {
	return "api_keys"
}

// Active reports whether the key can still authenticate a request.
func (k *APIKey) Active() bool {
	return k.RevokedAt == nil
}

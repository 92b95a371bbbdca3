package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey stores only the SHA-256 hex digest of the issued key; the plaintext
// is returned exactly once at creation time.
type APIKey struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	KeyHash    string         `gorm:"column:key_hash;uniqueIndex;not null" json:"-"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	LastUsedAt *time.Time     `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (APIKey) TableName() string { return "api_key" }

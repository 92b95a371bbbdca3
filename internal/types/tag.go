package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Color     string         `gorm:"column:color" json:"color"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Tag) TableName() string { return "tag" }

// TagAssignment links a tag to any taggable row (character sheets, scene and
// prop masters, outputs) by entity type + id.
type TagAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TagID      uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_entity" json:"tag_id"`
	Tag        *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TagID;references:ID" json:"tag,omitempty"`
	EntityType string    `gorm:"column:entity_type;not null;index:idx_tag_entity" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_entity" json:"entity_id"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TagAssignment) TableName() string { return "tag_assignment" }

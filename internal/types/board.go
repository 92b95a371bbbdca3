package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board is an ordered storyboard inside a Studio. SequenceOrder positions it
// among its siblings; WorkflowID optionally links the workflow its steps run.
type Board struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudioID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"studio_id"`
	Studio          *Studio        `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudioID;references:ID" json:"studio,omitempty"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	SequenceOrder   int            `gorm:"column:sequence_order;not null;default:0" json:"sequence_order"`
	WorkflowID      *uuid.UUID     `gorm:"type:uuid;index" json:"workflow_id,omitempty"`
	DurationSeconds float64        `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Board) TableName() string { return "board" }

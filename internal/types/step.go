package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Step is one execution unit bound to a Board and a Workflow. OutputData maps
// node id -> execution result and is merged one node at a time, never replaced
// wholesale. Metadata carries per-node timing and the exact provider request
// bodies.
type Step struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"board_id"`
	Board      *Board         `gorm:"constraint:OnDelete:CASCADE;foreignKey:BoardID;references:ID" json:"board,omitempty"`
	WorkflowID uuid.UUID      `gorm:"type:uuid;not null;index" json:"workflow_id"`
	OutputData datatypes.JSON `gorm:"column:output_data;type:jsonb" json:"output_data"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Step) TableName() string { return "step" }

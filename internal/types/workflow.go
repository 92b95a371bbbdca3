package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Node type tags persisted inside Workflow.Nodes. The set is data, not code:
// the editor writes these strings and the executor dispatches on them.
const (
	NodeTypeTextInput        = "text_input"
	NodeTypeImageInput       = "image_input"
	NodeTypeTextGeneration   = "text_generation"
	NodeTypeImageGeneration  = "image_generation"
	NodeTypeSpeechGeneration = "speech_generation"
	NodeTypeVideoGeneration  = "video_generation"
)

type WorkflowNodeData struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
}

type WorkflowNode struct {
	ID   string           `json:"id"`
	Data WorkflowNodeData `json:"data"`
}

// WorkflowEdge connects one node's output to another node's input slot.
/// SourceHandle optionally names the carried channel: image, video, audio or
// prompt.
type WorkflowEdge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// FormField is one auto-derived entry of a workflow's external input form,
// produced from the workflow's input nodes on every save.
type FormField struct {
	NodeID   string `json:"node_id"`
	Label    string `json:"label"`
	Type     string `json:"type"` // "text" or "image"
	Required bool   `json:"required"`
}

type Workflow struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	Nodes      datatypes.JSON `gorm:"column:nodes;type:jsonb" json:"nodes"`
	Edges      datatypes.JSON `gorm:"column:edges;type:jsonb" json:"edges"`
	FormConfig datatypes.JSON `gorm:"column:form_config;type:jsonb" json:"form_config"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Workflow) TableName() string { return "workflow" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
	QueueStatusCancelled  = "cancelled"
)

const (
	EnhanceModeNone    = "none"
	EnhanceModeEnhance = "enhance"
)

// QueueImageRef points at another entity whose stored image is pulled in as a
// reference at execution time.
type QueueImageRef struct {
	ImageType   string    `json:"image_type"` // "character_sheet" or "output"
	ReferenceID uuid.UUID `json:"reference_id"`
}

type PromptQueueItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Prompt         string         `gorm:"column:prompt;not null" json:"prompt"`
	NegativePrompt string         `gorm:"column:negative_prompt" json:"negative_prompt"`
	Model          string         `gorm:"column:model" json:"model"`
	AspectRatio    string         `gorm:"column:aspect_ratio" json:"aspect_ratio"`
	EnhancePrompt  string         `gorm:"column:enhance_prompt;not null;default:'none'" json:"enhance_prompt"`
	EnhancedPrompt string         `gorm:"column:enhanced_prompt" json:"enhanced_prompt"`
	Status         string         `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Images         datatypes.JSON `gorm:"column:images;type:jsonb" json:"images"`
	OutputID       *uuid.UUID     `gorm:"type:uuid" json:"output_id,omitempty"`
	ErrorMessage   string         `gorm:"column:error_message" json:"error_message"`
	CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PromptQueueItem) TableName() string { return "prompt_queue" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationLine is one spoken line. AudioKey is filled in once speech has
// been generated for the line.
type ConversationLine struct {
	CharacterSheetID *uuid.UUID `json:"character_sheet_id,omitempty"`
	VoiceID          string     `json:"voice_id,omitempty"`
	Text             string     `json:"text"`
	AudioKey         string     `json:"audio_key,omitempty"`
}

type Conversation struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Lines     datatypes.JSON `gorm:"column:lines;type:jsonb" json:"lines"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Conversation struct {
	Id      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChildId *uuid.UUID `gorm:"type:uuid;index"` // fixed at creation, never changes
	Title   string     `gorm:"type:text;not null"`

	ScopeMode   string  `gorm:"type:varchar(20);not null;default:'general'"`
	LockedAgent *string `gorm:"type:varchar(50)"`

	EnabledAgents       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ParticipatingAgents datatypes.JSONSlice[string] `gorm:"type:jsonb"` // ordered, duplicates kept for frequency
	PrimaryAgent        string                      `gorm:"type:varchar(50)"`

	Summary          string          `gorm:"type:text"`
	SummaryEmbedding pgvector.Vector `gorm:"type:vector(1536)"`

	Ended   bool       `gorm:"not null;default:false"`
	EndedAt *time.Time `gorm:""`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

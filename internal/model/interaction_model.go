package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Interaction is one recorded chat turn. Rows are append-only: the repository
// exposes no update or delete path.
type Interaction struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID       `gorm:"type:uuid;not null;index:idx_interactions_scope,priority:1"`
	ChildId        *uuid.UUID      `gorm:"type:uuid;index:idx_interactions_scope,priority:2"` // NULL = general scope
	ConversationId *uuid.UUID      `gorm:"type:uuid;index"`
	Query          string          `gorm:"type:text;not null"`
	Response       string          `gorm:"type:text;not null"`
	AgentType      string          `gorm:"type:varchar(50);not null"`
	Embedding      pgvector.Vector `gorm:"type:vector(1536)"`
	MemoryTrace    string          `gorm:"type:text"` // formatted retrieval trace, kept for audit
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (Interaction) TableName() string {
	return "interactions"
}

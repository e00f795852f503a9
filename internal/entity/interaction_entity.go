package entity

import (
	"time"

	"github.com/google/uuid"
)

type Interaction struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ChildId        *uuid.UUID
	ConversationId *uuid.UUID
	Query          string
	Response       string
	AgentType      string
	Embedding      []float32
	MemoryTrace    string
	CreatedAt      time.Time
}

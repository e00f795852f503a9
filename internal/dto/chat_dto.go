package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitTurnRequest struct {
	ConversationId *uuid.UUID `json:"conversation_id"`
	ChildId        *uuid.UUID `json:"child_id"`
	Query          string     `json:"query" validate:"required,min=1,max=8000"`
	ForcedAgent    *string    `json:"forced_agent"`
}

type SubmitTurnResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	InteractionId  uuid.UUID `json:"interaction_id"`
	AgentType      string    `json:"agent_type"`
	Response       string    `json:"response"`
	PrimaryAgent   string    `json:"primary_agent"`
	MemoryTrace    string    `json:"retrieved_memory_trace,omitempty"`
}

type ConversationResponse struct {
	Id                  uuid.UUID  `json:"id"`
	ChildId             *uuid.UUID `json:"child_id,omitempty"`
	Title               string     `json:"title"`
	ScopeMode           string     `json:"scope_mode"`
	LockedAgent         *string    `json:"locked_agent,omitempty"`
	EnabledAgents       []string   `json:"enabled_agents"`
	ParticipatingAgents []string   `json:"participating_agents"`
	PrimaryAgent        string     `json:"primary_agent"`
	Summary             string     `json:"summary,omitempty"`
	Ended               bool       `json:"ended"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type InteractionResponse struct {
	Id        uuid.UUID `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	AgentType string    `json:"agent_type"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateConversationMetadataRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=200"`
	ScopeMode     *string  `json:"scope_mode"`
	EnabledAgents []string `json:"enabled_agents"`
	LockedAgent   *string  `json:"locked_agent"`
}

type EndConversationResponse struct {
	Id      uuid.UUID  `json:"id"`
	Ended   bool       `json:"ended"`
	EndedAt *time.Time `json:"ended_at,omitempty"`
	Summary string     `json:"summary,omitempty"`
}

type AgentInfoResponse struct {
	Tag         string `json:"tag"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type ListConversationsQuery struct {
	Page    int        `query:"page"`
	Limit   int        `query:"limit"`
	ChildId *uuid.UUID `query:"child_id"`
}

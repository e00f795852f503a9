package dto

import "github.com/google/uuid"

// PublishTurnCompletedMessage is the internal queue payload emitted after a
// turn commits. The consumer materializes a notification row from it and
// forwards the event to NATS for external delivery.
type PublishTurnCompletedMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	InteractionId  uuid.UUID `json:"interaction_id"`
	UserId         uuid.UUID `json:"user_id"`
	AgentType      string    `json:"agent_type"`
	UsedFallback   bool      `json:"used_fallback"`
}

package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-parenting-be/internal/entity"
)

// ProfileRepository is read-only: profiles are owned by a separate subsystem
// and the chat engine only consumes them for context facts.
type ProfileRepository interface {
	FindCaregiverByUserId(ctx context.Context, userId uuid.UUID) (*entity.CaregiverProfile, error)
	FindChildById(ctx context.Context, id uuid.UUID) (*entity.ChildProfile, error)
}

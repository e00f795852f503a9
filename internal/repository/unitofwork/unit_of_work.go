package unitofwork

import (
	"context"

	"ai-parenting-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	InteractionRepository() contract.InteractionRepository
	ProfileRepository() contract.ProfileRepository
	NotificationRepository() contract.NotificationRepository
}

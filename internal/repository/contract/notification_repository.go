package contract

import (
	"context"

	"ai-parenting-be/internal/model"
	"ai-parenting-be/internal/repository/specification"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Notification, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

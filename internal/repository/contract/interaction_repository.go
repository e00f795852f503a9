package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/repository/specification"
)

// InteractionRepository is append-only: recorded turns are the caregiver's
// memory record and are never rewritten or removed.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *entity.Interaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar ranks past interactions in one memory scope by cosine
	// distance to the query embedding. The scope filter runs before ranking
	// so neighbors never leak across users or children.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, childId *uuid.UUID) ([]*entity.Interaction, error)
}

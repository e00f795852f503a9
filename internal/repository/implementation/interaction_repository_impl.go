package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/mapper"
	"ai-parenting-be/internal/model"
	"ai-parenting-be/internal/repository/contract"
	"ai-parenting-be/internal/repository/specification"
)

type InteractionRepositoryImpl struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) contract.InteractionRepository {
	return &InteractionRepositoryImpl{db: db}
}

func (r *InteractionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InteractionRepositoryImpl) Create(ctx context.Context, interaction *entity.Interaction) error {
	m := mapper.ToInteractionModel(interaction)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*interaction = *mapper.ToInteractionEntity(m)
	return nil
}

func (r *InteractionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error) {
	var m model.Interaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.ToInteractionEntity(&m), nil
}

func (r *InteractionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	var models []*model.Interaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Interaction, len(models))
	for i, m := range models {
		entities[i] = mapper.ToInteractionEntity(m)
	}
	return entities, nil
}

func (r *InteractionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Interaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *InteractionRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, childId *uuid.UUID) ([]*entity.Interaction, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.Interaction

	// pgvector cosine distance. The scope filters MUST run before ranking so
	// a child-scoped query never surfaces another scope's memories.
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userId)
	if childId == nil {
		query = query.Where("child_id IS NULL")
	} else {
		query = query.Where("child_id = ?", childId)
	}

	err := query.
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.Interaction, len(models))
	for i, m := range models {
		entities[i] = mapper.ToInteractionEntity(m)
	}
	return entities, nil
}

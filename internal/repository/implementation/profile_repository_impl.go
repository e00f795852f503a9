package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/mapper"
	"ai-parenting-be/internal/model"
	"ai-parenting-be/internal/repository/contract"
)

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) FindCaregiverByUserId(ctx context.Context, userId uuid.UUID) (*entity.CaregiverProfile, error) {
	var m model.CaregiverProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.ToCaregiverProfileEntity(&m), nil
}

func (r *ProfileRepositoryImpl) FindChildById(ctx context.Context, id uuid.UUID) (*entity.ChildProfile, error) {
	var m model.ChildProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.ToChildProfileEntity(&m), nil
}

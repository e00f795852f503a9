package mapper

import (
	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/model"
)

func ToCaregiverProfileEntity(m *model.CaregiverProfile) *entity.CaregiverProfile {
	if m == nil {
		return nil
	}
	return &entity.CaregiverProfile{
		Id:             m.Id,
		UserId:         m.UserId,
		Relationship:   m.Relationship,
		ParentingStyle: m.ParentingStyle,
		Notes:          m.Notes,
	}
}

func ToChildProfileEntity(m *model.ChildProfile) *entity.ChildProfile {
	if m == nil {
		return nil
	}
	return &entity.ChildProfile{
		Id:                 m.Id,
		UserId:             m.UserId,
		Name:               m.Name,
		BirthDate:          m.BirthDate,
		DevelopmentalStage: m.DevelopmentalStage,
		SpecialNeeds:       m.SpecialNeeds,
		Characteristics:    []string(m.Characteristics),
		CurrentChallenges:  []string(m.CurrentChallenges),
		Notes:              m.Notes,
	}
}

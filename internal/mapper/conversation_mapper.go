package mapper

import (
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/model"
)

func ToConversationEntity(m *model.Conversation) *entity.Conversation {
	if m == nil {
		return nil
	}
	return &entity.Conversation{
		Id:                  m.Id,
		UserId:              m.UserId,
		ChildId:             m.ChildId,
		Title:               m.Title,
		ScopeMode:           m.ScopeMode,
		LockedAgent:         m.LockedAgent,
		EnabledAgents:       []string(m.EnabledAgents),
		ParticipatingAgents: []string(m.ParticipatingAgents),
		PrimaryAgent:        m.PrimaryAgent,
		Summary:             m.Summary,
		SummaryEmbedding:    m.SummaryEmbedding.Slice(),
		Ended:               m.Ended,
		EndedAt:             m.EndedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ToConversationModel(e *entity.Conversation) *model.Conversation {
	if e == nil {
		return nil
	}
	return &model.Conversation{
		Id:                  e.Id,
		UserId:              e.UserId,
		ChildId:             e.ChildId,
		Title:               e.Title,
		ScopeMode:           e.ScopeMode,
		LockedAgent:         e.LockedAgent,
		EnabledAgents:       datatypes.NewJSONSlice(e.EnabledAgents),
		ParticipatingAgents: datatypes.NewJSONSlice(e.ParticipatingAgents),
		PrimaryAgent:        e.PrimaryAgent,
		Summary:             e.Summary,
		SummaryEmbedding:    pgvector.NewVector(e.SummaryEmbedding),
		Ended:               e.Ended,
		EndedAt:             e.EndedAt,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func ToConversationEntities(models []model.Conversation) []entity.Conversation {
	out := make([]entity.Conversation, 0, len(models))
	for i := range models {
		out = append(out, *ToConversationEntity(&models[i]))
	}
	return out
}

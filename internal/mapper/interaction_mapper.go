package mapper

import (
	"github.com/pgvector/pgvector-go"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/model"
)

func ToInteractionEntity(m *model.Interaction) *entity.Interaction {
	if m == nil {
		return nil
	}
	return &entity.Interaction{
		Id:             m.Id,
		UserId:         m.UserId,
		ChildId:        m.ChildId,
		ConversationId: m.ConversationId,
		Query:          m.Query,
		Response:       m.Response,
		AgentType:      m.AgentType,
		Embedding:      m.Embedding.Slice(),
		MemoryTrace:    m.MemoryTrace,
		CreatedAt:      m.CreatedAt,
	}
}

func ToInteractionModel(e *entity.Interaction) *model.Interaction {
	if e == nil {
		return nil
	}
	return &model.Interaction{
		Id:             e.Id,
		UserId:         e.UserId,
		ChildId:        e.ChildId,
		ConversationId: e.ConversationId,
		Query:          e.Query,
		Response:       e.Response,
		AgentType:      e.AgentType,
		Embedding:      pgvector.NewVector(e.Embedding),
		MemoryTrace:    e.MemoryTrace,
		CreatedAt:      e.CreatedAt,
	}
}

func ToInteractionEntities(models []model.Interaction) []entity.Interaction {
	out := make([]entity.Interaction, 0, len(models))
	for i := range models {
		out = append(out, *ToInteractionEntity(&models[i]))
	}
	return out
}

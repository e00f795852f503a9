package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// ChildScope partitions memory by child. A nil child means the caregiver's
// general scope, which matches only rows with a NULL child_id.
type ChildScope struct {
	ChildID *uuid.UUID
}

func (s ChildScope) Apply(db *gorm.DB) *gorm.DB {
	if s.ChildID == nil {
		return db.Where("child_id IS NULL")
	}
	return db.Where("child_id = ?", s.ChildID)
}

type NotEnded struct{}

func (s NotEnded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended = ?", false)
}

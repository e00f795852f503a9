package model

import (
	"time"

	"github.com/google/uuid"
)

// CaregiverProfile is owned by the profile subsystem; the chat engine only
// reads it for context-bundle facts.
type CaregiverProfile struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Relationship   string    `gorm:"type:varchar(50)"` // "mother", "father", "guardian", ...
	ParentingStyle string    `gorm:"type:varchar(50)"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (CaregiverProfile) TableName() string {
	return "caregiver_profiles"
}

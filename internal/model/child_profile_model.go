package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChildProfile is owned by the profile subsystem; read-only here.
type ChildProfile struct {
	Id                 uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Name               string                      `gorm:"type:varchar(100);not null"`
	BirthDate          *time.Time                  `gorm:""`
	DevelopmentalStage string                      `gorm:"type:varchar(50)"`
	SpecialNeeds       string                      `gorm:"type:text"`
	Characteristics    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CurrentChallenges  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Notes              string                      `gorm:"type:text"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime"`
}

func (ChildProfile) TableName() string {
	return "child_profiles"
}

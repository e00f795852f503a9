package entity

import (
	"time"

	"github.com/google/uuid"
)

type CaregiverProfile struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Relationship   string
	ParentingStyle string
	Notes          string
}

type ChildProfile struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	Name               string
	BirthDate          *time.Time
	DevelopmentalStage string
	SpecialNeeds       string
	Characteristics    []string
	CurrentChallenges  []string
	Notes              string
}

// AgeYears returns the child's age in full years, or -1 when the birth date
// is unknown.
func (c *ChildProfile) AgeYears(now time.Time) int {
	if c.BirthDate == nil {
		return -1
	}
	years := now.Year() - c.BirthDate.Year()
	anniversary := c.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

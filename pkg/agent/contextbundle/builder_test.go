package contextbundle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ai-parenting-be/internal/entity"
)

type stubProfileRepo struct {
	caregiver      *entity.CaregiverProfile
	child          *entity.ChildProfile
	err            error
	caregiverCalls int
	childCalls     int
}

func (s *stubProfileRepo) FindCaregiverByUserId(ctx context.Context, userId uuid.UUID) (*entity.CaregiverProfile, error) {
	s.caregiverCalls++
	return s.caregiver, s.err
}

func (s *stubProfileRepo) FindChildById(ctx context.Context, id uuid.UUID) (*entity.ChildProfile, error) {
	s.childCalls++
	return s.child, s.err
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestFormatMemoryTrace(t *testing.T) {
	t.Run("empty returns empty string", func(t *testing.T) {
		assert.Equal(t, "", FormatMemoryTrace(nil))
	})

	t.Run("renders one line per memory", func(t *testing.T) {
		memories := []*entity.Interaction{
			{
				Query:     "how do I handle tantrums",
				Response:  "stay calm and name the feeling",
				CreatedAt: time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC),
			},
			{
				Query:     "is a reward chart a good idea",
				Response:  "it can work for concrete routines",
				CreatedAt: time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC),
			},
		}

		trace := FormatMemoryTrace(memories)
		assert.Equal(t,
			"on Feb 14, 2026, asked: 'how do I handle tantrums' / replied: 'stay calm and name the feeling'\n"+
				"on Mar 2, 2026, asked: 'is a reward chart a good idea' / replied: 'it can work for concrete routines'",
			trace)
	})
}

func TestBuilderBuild(t *testing.T) {
	userId := uuid.New()
	childId := uuid.New()
	birth := time.Now().AddDate(-4, -2, 0)

	repo := &stubProfileRepo{
		caregiver: &entity.CaregiverProfile{
			UserId:         userId,
			Relationship:   "mother",
			ParentingStyle: "authoritative",
		},
		child: &entity.ChildProfile{
			Id:                 childId,
			Name:               "Mia",
			BirthDate:          &birth,
			DevelopmentalStage: "preschool",
			CurrentChallenges:  []string{"picky eating"},
		},
	}
	b := NewBuilder(repo, nopLogger{})

	bundle := b.Build(context.Background(), userId, &childId, nil, "talked about meals")

	assert.Equal(t, "mother; parenting style: authoritative", bundle.CaregiverFacts)
	assert.Contains(t, bundle.ChildFacts, "Mia")
	assert.Contains(t, bundle.ChildFacts, "age 4")
	assert.Contains(t, bundle.ChildFacts, "current challenges: picky eating")
	assert.Equal(t, "talked about meals", bundle.PriorSummary)

	rendered := bundle.Render()
	assert.Contains(t, rendered, "Caregiver: mother")
	assert.Contains(t, rendered, "Conversation so far: talked about meals")
}

func TestBuilderCachesProfiles(t *testing.T) {
	userId := uuid.New()
	repo := &stubProfileRepo{caregiver: &entity.CaregiverProfile{Relationship: "father"}}
	b := NewBuilder(repo, nopLogger{})

	b.Build(context.Background(), userId, nil, nil, "")
	b.Build(context.Background(), userId, nil, nil, "")

	assert.Equal(t, 1, repo.caregiverCalls)

	b.Invalidate(userId, nil)
	b.Build(context.Background(), userId, nil, nil, "")
	assert.Equal(t, 2, repo.caregiverCalls)
}

func TestBuilderDegradesOnProfileError(t *testing.T) {
	repo := &stubProfileRepo{err: errors.New("db down")}
	b := NewBuilder(repo, nopLogger{})
	childId := uuid.New()

	bundle := b.Build(context.Background(), uuid.New(), &childId, nil, "")

	assert.Equal(t, "", bundle.CaregiverFacts)
	assert.Equal(t, "", bundle.ChildFacts)
	assert.Equal(t, "No prior context available.", bundle.Render())
}

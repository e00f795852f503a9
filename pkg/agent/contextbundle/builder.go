package contextbundle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/internal/repository/contract"
)

const (
	profileCacheTTL     = 5 * time.Minute
	profileCacheCleanup = 10 * time.Minute
)

// Bundle is everything a specialist agent sees besides the query itself:
// caregiver facts, child facts, the retrieved memory trace and the prior
// conversation summary.
type Bundle struct {
	CaregiverFacts string
	ChildFacts     string
	MemoryTrace    string
	PriorSummary   string
}

// Render flattens the bundle into the context block injected into the
// persona prompt. Empty sections are skipped.
func (b *Bundle) Render() string {
	var sections []string
	if b.CaregiverFacts != "" {
		sections = append(sections, "Caregiver: "+b.CaregiverFacts)
	}
	if b.ChildFacts != "" {
		sections = append(sections, "Child: "+b.ChildFacts)
	}
	if b.PriorSummary != "" {
		sections = append(sections, "Conversation so far: "+b.PriorSummary)
	}
	if b.MemoryTrace != "" {
		sections = append(sections, "Relevant past interactions:\n"+b.MemoryTrace)
	}
	if len(sections) == 0 {
		return "No prior context available."
	}
	return strings.Join(sections, "\n\n")
}

type Builder struct {
	profiles contract.ProfileRepository
	cache    *gocache.Cache
	log      logger.ILogger
}

func NewBuilder(profiles contract.ProfileRepository, log logger.ILogger) *Builder {
	return &Builder{
		profiles: profiles,
		cache:    gocache.New(profileCacheTTL, profileCacheCleanup),
		log:      log,
	}
}

// Build assembles the context bundle for one turn. Profile lookups are
// cached; a missing or failing profile degrades to an empty section rather
// than failing the turn.
func (b *Builder) Build(ctx context.Context, userId uuid.UUID, childId *uuid.UUID, memories []*entity.Interaction, priorSummary string) *Bundle {
	bundle := &Bundle{
		MemoryTrace:  FormatMemoryTrace(memories),
		PriorSummary: priorSummary,
	}

	bundle.CaregiverFacts = b.caregiverFacts(ctx, userId)
	if childId != nil {
		bundle.ChildFacts = b.childFacts(ctx, *childId)
	}
	return bundle
}

func (b *Builder) caregiverFacts(ctx context.Context, userId uuid.UUID) string {
	key := "caregiver:" + userId.String()
	if cached, ok := b.cache.Get(key); ok {
		return cached.(string)
	}

	profile, err := b.profiles.FindCaregiverByUserId(ctx, userId)
	if err != nil {
		b.log.Warn("contextbundle", "caregiver profile lookup failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return ""
	}
	facts := renderCaregiverFacts(profile)
	b.cache.Set(key, facts, gocache.DefaultExpiration)
	return facts
}

func (b *Builder) childFacts(ctx context.Context, childId uuid.UUID) string {
	key := "child:" + childId.String()
	if cached, ok := b.cache.Get(key); ok {
		return cached.(string)
	}

	profile, err := b.profiles.FindChildById(ctx, childId)
	if err != nil {
		b.log.Warn("contextbundle", "child profile lookup failed", map[string]interface{}{
			"child_id": childId.String(),
			"error":    err.Error(),
		})
		return ""
	}
	facts := renderChildFacts(profile, time.Now())
	b.cache.Set(key, facts, gocache.DefaultExpiration)
	return facts
}

// Invalidate drops cached facts for a profile after an external update.
func (b *Builder) Invalidate(userId uuid.UUID, childId *uuid.UUID) {
	b.cache.Delete("caregiver:" + userId.String())
	if childId != nil {
		b.cache.Delete("child:" + childId.String())
	}
}

func renderCaregiverFacts(p *entity.CaregiverProfile) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Relationship != "" {
		parts = append(parts, p.Relationship)
	}
	if p.ParentingStyle != "" {
		parts = append(parts, "parenting style: "+p.ParentingStyle)
	}
	if p.Notes != "" {
		parts = append(parts, p.Notes)
	}
	return strings.Join(parts, "; ")
}

func renderChildFacts(p *entity.ChildProfile, now time.Time) string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if age := p.AgeYears(now); age >= 0 {
		parts = append(parts, fmt.Sprintf("age %d", age))
	}
	if p.DevelopmentalStage != "" {
		parts = append(parts, "stage: "+p.DevelopmentalStage)
	}
	if p.SpecialNeeds != "" {
		parts = append(parts, "special needs: "+p.SpecialNeeds)
	}
	if len(p.CurrentChallenges) > 0 {
		parts = append(parts, "current challenges: "+strings.Join(p.CurrentChallenges, ", "))
	}
	return strings.Join(parts, "; ")
}

// FormatMemoryTrace renders retrieved interactions one per line, oldest
// formatting preserved from retrieval order (nearest first).
func FormatMemoryTrace(memories []*entity.Interaction) string {
	if len(memories) == 0 {
		return ""
	}
	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, fmt.Sprintf("on %s, asked: '%s' / replied: '%s'",
			m.CreatedAt.Format("Jan 2, 2006"), m.Query, m.Response))
	}
	return strings.Join(lines, "\n")
}

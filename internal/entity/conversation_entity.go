package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/pkg/apperrors"
)

type Conversation struct {
	Id      uuid.UUID
	UserId  uuid.UUID
	ChildId *uuid.UUID
	Title   string

	ScopeMode   string
	LockedAgent *string

	// EnabledAgents is the set of agents allowed in this conversation: all
	// four in general mode, just the locked one in agent-locked mode.
	// ParticipatingAgents keeps every answered occurrence in turn order so
	// the primary agent can be recomputed by frequency.
	EnabledAgents       []string
	ParticipatingAgents []string
	PrimaryAgent        string

	Summary          string
	SummaryEmbedding []float32

	Ended   bool
	EndedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation builds the aggregate for a first turn. A forced agent on
// the opening turn locks the conversation to that persona; otherwise all
// four personas are enabled.
func NewConversation(id uuid.UUID, userId uuid.UUID, childId *uuid.UUID, title string, forcedAgent *string, now time.Time) *Conversation {
	conv := &Conversation{
		Id:        id,
		UserId:    userId,
		ChildId:   childId,
		Title:     title,
		ScopeMode: constant.ScopeModeGeneral,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if forcedAgent != nil && *forcedAgent != "" {
		tag := *forcedAgent
		conv.ScopeMode = constant.ScopeModeAgentLocked
		conv.LockedAgent = &tag
		conv.EnabledAgents = []string{tag}
	} else {
		conv.EnabledAgents = append([]string(nil), constant.KnownAgents...)
	}
	return conv
}

// RecordAgent registers one turn handled by the given agent and recomputes
// the primary agent. Fallback turns count like any other.
func (c *Conversation) RecordAgent(tag string) error {
	if c.Ended {
		return apperrors.ErrConversationEnded
	}
	c.ParticipatingAgents = append(c.ParticipatingAgents, tag)
	c.PrimaryAgent = c.computePrimaryAgent()
	return nil
}

// computePrimaryAgent picks the most frequent participating agent. Ties go
// to the agent that appeared first in the conversation.
func (c *Conversation) computePrimaryAgent() string {
	if len(c.ParticipatingAgents) == 0 {
		return ""
	}
	counts := make(map[string]int, len(c.ParticipatingAgents))
	for _, tag := range c.ParticipatingAgents {
		counts[tag]++
	}
	best := ""
	bestCount := 0
	for _, tag := range c.ParticipatingAgents {
		if counts[tag] > bestCount {
			best = tag
			bestCount = counts[tag]
		}
	}
	return best
}

// End marks the conversation finished. Calling it again is a no-op that
// preserves the original end timestamp.
func (c *Conversation) End(now time.Time) {
	if c.Ended {
		return
	}
	c.Ended = true
	c.EndedAt = &now
}

// SetSummary stores the rolling summary and its embedding together so the
// two never drift apart.
func (c *Conversation) SetSummary(text string, embedding []float32) {
	c.Summary = text
	c.SummaryEmbedding = embedding
}

// ApplyMetadata updates the mutable metadata fields. Nil fields are left
// untouched. It never rewrites agent tags on already recorded turns.
// Invariant on exit: a locked agent is set iff scope mode is agent-locked.
func (c *Conversation) ApplyMetadata(title *string, scopeMode *string, enabledAgents []string, lockedAgent *string) error {
	if c.Ended {
		return apperrors.ErrConversationEnded
	}
	wasLocked := c.LockedAgent != nil
	if title != nil && *title != "" {
		c.Title = *title
	}
	if enabledAgents != nil {
		c.EnabledAgents = append([]string(nil), enabledAgents...)
	}

	if lockedAgent != nil {
		if *lockedAgent == "" {
			c.LockedAgent = nil
			c.ScopeMode = constant.ScopeModeGeneral
		} else {
			tag := *lockedAgent
			c.LockedAgent = &tag
			c.ScopeMode = constant.ScopeModeAgentLocked
		}
	}

	if scopeMode != nil {
		switch *scopeMode {
		case constant.ScopeModeGeneral:
			c.ScopeMode = constant.ScopeModeGeneral
			c.LockedAgent = nil
		case constant.ScopeModeAgentLocked:
			if c.LockedAgent == nil {
				return apperrors.ErrInvalidMetadata
			}
			c.ScopeMode = constant.ScopeModeAgentLocked
		default:
			return apperrors.ErrInvalidMetadata
		}
	}

	// Normalize the enabled set against the lock. An agent-locked
	// conversation enables exactly the locked persona, whatever enabled set
	// was supplied. Clearing the lock without an explicit replacement set
	// restores every persona.
	if c.LockedAgent != nil {
		c.EnabledAgents = []string{*c.LockedAgent}
	} else if wasLocked && enabledAgents == nil {
		c.EnabledAgents = append([]string(nil), constant.KnownAgents...)
	}
	return nil
}

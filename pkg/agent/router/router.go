package router

import (
	"strings"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/pkg/apperrors"
)

// Router picks the specialist persona for a query. A manual override always
// wins; otherwise a fixed-priority keyword scan over the immediate query text
// decides. Crisis keywords are checked first so a coincidental development or
// resource keyword in the same sentence can never shadow a safety concern.
type Router struct{}

func New() *Router {
	return &Router{}
}

// IsKnownAgent reports whether tag is one of the routable personas.
func IsKnownAgent(tag string) bool {
	for _, known := range constant.KnownAgents {
		if tag == known {
			return true
		}
	}
	return false
}

// Choose returns the persona tag for a query. forcedTag == "" means auto.
func (r *Router) Choose(query string, forcedTag string) (string, error) {
	if forcedTag != "" {
		if !IsKnownAgent(forcedTag) {
			return "", apperrors.ErrInvalidForcedAgent
		}
		return forcedTag, nil
	}

	lowered := strings.ToLower(query)

	if containsAny(lowered, constant.CrisisKeywords) {
		return constant.AgentCrisisIntervention, nil
	}
	if containsAny(lowered, constant.DevelopmentKeywords) {
		return constant.AgentChildDevelopment, nil
	}
	if containsAny(lowered, constant.CommunityKeywords) {
		return constant.AgentCommunityConnector, nil
	}

	return constant.AgentParentingStyle, nil
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

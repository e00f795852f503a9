package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/pkg/llm"
)

type Summarizer struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewSummarizer(provider llm.LLMProvider, log logger.ILogger) *Summarizer {
	return &Summarizer{provider: provider, log: log}
}

// Summarize produces the rolling conversation summary from the full turn
// history. Generation failure yields the fixed unavailable marker instead of
// leaving a stale summary in place.
func (s *Summarizer) Summarize(ctx context.Context, interactions []*entity.Interaction) string {
	if len(interactions) == 0 {
		return ""
	}

	transcript := renderTranscript(interactions)
	template := constant.SummaryFullPrompt
	if utf8.RuneCountInString(transcript) <= constant.SummaryShortTranscriptThreshold {
		template = constant.SummaryShortPrompt
	}

	text, err := s.provider.Generate(ctx, fmt.Sprintf(template, transcript))
	if err != nil {
		s.log.Warn("summary", "summary generation failed", map[string]interface{}{
			"turns": len(interactions),
			"error": err.Error(),
		})
		return constant.SummaryUnavailableText
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return constant.SummaryUnavailableText
	}
	return text
}

// Title generates a conversation title from the opening query, mentioning
// the child by name when the conversation is scoped to one. When generation
// fails it falls back to the truncated query itself.
func (s *Summarizer) Title(ctx context.Context, firstQuery string, childName string) string {
	subject := firstQuery
	if childName != "" {
		subject = fmt.Sprintf("%s (the question is about %s)", firstQuery, childName)
	}
	text, err := s.provider.Generate(ctx, fmt.Sprintf(constant.TitlePrompt, subject))
	if err != nil {
		s.log.Warn("summary", "title generation failed, truncating query", map[string]interface{}{
			"error": err.Error(),
		})
		return Truncate(firstQuery, constant.TitleMaxLength)
	}
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if text == "" {
		return Truncate(firstQuery, constant.TitleMaxLength)
	}
	return Truncate(text, constant.TitleMaxLength)
}

// Truncate cuts text to at most max runes, appending an ellipsis when
// anything was removed.
func Truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func renderTranscript(interactions []*entity.Interaction) string {
	lines := make([]string, 0, len(interactions)*2)
	for _, turn := range interactions {
		lines = append(lines, "Caregiver: "+turn.Query)
		lines = append(lines, fmt.Sprintf("Assistant (%s): %s", turn.AgentType, turn.Response))
	}
	return strings.Join(lines, "\n")
}

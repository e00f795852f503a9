package responder

import (
	"context"
	"fmt"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/pkg/agent/contextbundle"
	"ai-parenting-be/pkg/llm"
)

// Result is one generated answer. When generation fails the text is the
// fixed apology, the tag degrades to the generic assistant and FallbackCause
// carries the underlying error for logging.
type Result struct {
	Text          string
	AgentTag      string
	FallbackCause error
}

func (r Result) IsFallback() bool {
	return r.FallbackCause != nil
}

var personaPrompts = map[string]string{
	constant.AgentParentingStyle:     constant.ParentingStylePrompt,
	constant.AgentChildDevelopment:   constant.ChildDevelopmentPrompt,
	constant.AgentCrisisIntervention: constant.CrisisInterventionPrompt,
	constant.AgentCommunityConnector: constant.CommunityConnectorPrompt,
}

type Responder struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewResponder(provider llm.LLMProvider, log logger.ILogger) *Responder {
	return &Responder{provider: provider, log: log}
}

// Respond generates the specialist answer for one turn. It never returns an
// error: failures degrade to the apologetic fallback so the turn can still
// be recorded.
func (r *Responder) Respond(ctx context.Context, agentTag string, bundle *contextbundle.Bundle, query string) Result {
	template, ok := personaPrompts[agentTag]
	if !ok {
		// Router output is validated upstream, so this is a programming error.
		r.log.Error("responder", "no persona template for agent", map[string]interface{}{
			"agent": agentTag,
		})
		return Result{
			Text:          constant.ResponderFallbackText,
			AgentTag:      constant.AgentFallback,
			FallbackCause: fmt.Errorf("unknown agent tag %q", agentTag),
		}
	}

	prompt := fmt.Sprintf(template, bundle.Render(), query)
	raw, err := r.provider.Generate(ctx, prompt)
	if err != nil {
		r.log.Warn("responder", "generation failed, serving fallback", map[string]interface{}{
			"agent": agentTag,
			"error": err.Error(),
		})
		return Result{
			Text:          constant.ResponderFallbackText,
			AgentTag:      constant.AgentFallback,
			FallbackCause: err,
		}
	}

	text := Format(raw)
	if text == "" {
		return Result{
			Text:          constant.ResponderFallbackText,
			AgentTag:      constant.AgentFallback,
			FallbackCause: fmt.Errorf("empty generation from provider"),
		}
	}

	return Result{Text: text, AgentTag: agentTag}
}

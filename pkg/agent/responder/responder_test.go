package responder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/pkg/agent/contextbundle"
	"ai-parenting-be/pkg/llm"
)

type stubLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestResponderRespond(t *testing.T) {
	bundle := &contextbundle.Bundle{CaregiverFacts: "mother of two"}

	t.Run("success keeps agent tag and formats text", func(t *testing.T) {
		provider := &stubLLM{response: "Try a **firm** routine."}
		r := NewResponder(provider, nopLogger{})

		result := r.Respond(context.Background(), constant.AgentParentingStyle, bundle, "bedtime battles")

		assert.False(t, result.IsFallback())
		assert.Equal(t, constant.AgentParentingStyle, result.AgentTag)
		assert.Equal(t, "Try a firm routine.", result.Text)
		assert.Contains(t, provider.lastPrompt, "mother of two")
		assert.Contains(t, provider.lastPrompt, "bedtime battles")
	})

	t.Run("provider error degrades to fallback", func(t *testing.T) {
		cause := errors.New("upstream 503")
		r := NewResponder(&stubLLM{err: cause}, nopLogger{})

		result := r.Respond(context.Background(), constant.AgentCrisisIntervention, bundle, "help")

		assert.True(t, result.IsFallback())
		assert.Equal(t, constant.AgentFallback, result.AgentTag)
		assert.Equal(t, constant.ResponderFallbackText, result.Text)
		assert.ErrorIs(t, result.FallbackCause, cause)
	})

	t.Run("empty generation degrades to fallback", func(t *testing.T) {
		r := NewResponder(&stubLLM{response: "   "}, nopLogger{})

		result := r.Respond(context.Background(), constant.AgentChildDevelopment, bundle, "milestones")

		assert.True(t, result.IsFallback())
		assert.Equal(t, constant.AgentFallback, result.AgentTag)
	})

	t.Run("each persona has a template", func(t *testing.T) {
		r := NewResponder(&stubLLM{response: "ok"}, nopLogger{})
		for _, tag := range constant.KnownAgents {
			result := r.Respond(context.Background(), tag, bundle, "question")
			assert.Equal(t, tag, result.AgentTag)
		}
	})
}

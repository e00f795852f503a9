package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/dto"
	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/model"
	"ai-parenting-be/internal/pkg/apperrors"
	"ai-parenting-be/internal/repository/contract"
	"ai-parenting-be/internal/repository/specification"
	"ai-parenting-be/internal/repository/unitofwork"
	"ai-parenting-be/pkg/agent/contextbundle"
	"ai-parenting-be/pkg/agent/responder"
	"ai-parenting-be/pkg/agent/router"
	"ai-parenting-be/pkg/agent/summary"
	"ai-parenting-be/pkg/embedding"
	"ai-parenting-be/pkg/llm"
)

// ---- in-memory fakes ----

type fakeStore struct {
	conversations map[uuid.UUID]*entity.Conversation
	interactions  []*entity.Interaction
	similar       []*entity.Interaction
	commitErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{conversations: map[uuid.UUID]*entity.Conversation{}}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return u.store.commitErr }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}
func (u *fakeUow) InteractionRepository() contract.InteractionRepository {
	return &fakeInteractionRepo{store: u.store}
}
func (u *fakeUow) ProfileRepository() contract.ProfileRepository {
	return &fakeProfileRepo{}
}
func (u *fakeUow) NotificationRepository() contract.NotificationRepository {
	return &fakeNotificationRepo{}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeConversationRepo struct {
	store *fakeStore
}

func (r *fakeConversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	cp := *conv
	r.store.conversations[conv.Id] = &cp
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conv *entity.Conversation) error {
	cp := *conv
	r.store.conversations[conv.Id] = &cp
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var id *uuid.UUID
	var owner *uuid.UUID
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			v := s.ID
			id = &v
		case specification.UserOwnedBy:
			v := s.UserID
			owner = &v
		}
	}
	if id == nil {
		return nil, nil
	}
	conv, ok := r.store.conversations[*id]
	if !ok {
		return nil, nil
	}
	if owner != nil && conv.UserId != *owner {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var owner *uuid.UUID
	for _, spec := range specs {
		if s, ok := spec.(specification.UserOwnedBy); ok {
			v := s.UserID
			owner = &v
		}
	}
	var out []*entity.Conversation
	for _, conv := range r.store.conversations {
		if owner != nil && conv.UserId != *owner {
			continue
		}
		cp := *conv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.conversations)), nil
}

type fakeInteractionRepo struct {
	store *fakeStore
}

func (r *fakeInteractionRepo) Create(ctx context.Context, interaction *entity.Interaction) error {
	cp := *interaction
	r.store.interactions = append(r.store.interactions, &cp)
	return nil
}

func (r *fakeInteractionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error) {
	return nil, nil
}

func (r *fakeInteractionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	var convId *uuid.UUID
	for _, spec := range specs {
		if s, ok := spec.(specification.ByConversationID); ok {
			v := s.ConversationID
			convId = &v
		}
	}
	var out []*entity.Interaction
	for _, turn := range r.store.interactions {
		if convId != nil && (turn.ConversationId == nil || *turn.ConversationId != *convId) {
			continue
		}
		cp := *turn
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInteractionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.interactions)), nil
}

func (r *fakeInteractionRepo) SearchSimilar(ctx context.Context, vec []float32, limit int, userId uuid.UUID, childId *uuid.UUID) ([]*entity.Interaction, error) {
	return r.store.similar, nil
}

type fakeProfileRepo struct{}

func (fakeProfileRepo) FindCaregiverByUserId(ctx context.Context, userId uuid.UUID) (*entity.CaregiverProfile, error) {
	return nil, nil
}
func (fakeProfileRepo) FindChildById(ctx context.Context, id uuid.UUID) (*entity.ChildProfile, error) {
	return nil, nil
}

type fakeNotificationRepo struct{}

func (fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error { return nil }
func (fakeNotificationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Notification, error) {
	return nil, nil
}
func (fakeNotificationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeLocker struct {
	denied bool
}

func (l *fakeLocker) Acquire(ctx context.Context, id uuid.UUID) (func(), bool) {
	return func() {}, !l.denied
}

type fakePublisher struct {
	published [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.published = append(p.published, payload)
	return nil
}

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}
func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

type stubEmbedProvider struct{}

func (stubEmbedProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5, 0.5}},
	}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// ---- harness ----

type harness struct {
	store     *fakeStore
	locker    *fakeLocker
	publisher *fakePublisher
	svc       IChatService
}

func newHarness(provider llm.LLMProvider) *harness {
	store := newFakeStore()
	locker := &fakeLocker{}
	publisher := &fakePublisher{}
	factory := &fakeFactory{store: store}
	log := nopLogger{}

	embedClient := embedding.NewClient(stubEmbedProvider{}, 3, time.Second, log)
	bundleBuilder := contextbundle.NewBuilder(&fakeProfileRepo{}, log)

	svc := NewChatService(
		factory,
		embedClient,
		router.New(),
		bundleBuilder,
		responder.NewResponder(provider, log),
		summary.NewSummarizer(provider, log),
		locker,
		publisher,
		nil, // NATS optional
		5,
		log,
		log,
	)
	return &harness{store: store, locker: locker, publisher: publisher, svc: svc}
}

func (h *harness) seedConversation(userId uuid.UUID, mutate func(*entity.Conversation)) *entity.Conversation {
	conv := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "seeded",
		ScopeMode: "general",
		CreatedAt: time.Now(),
	}
	if mutate != nil {
		mutate(conv)
	}
	h.store.conversations[conv.Id] = conv
	return conv
}

// ---- tests ----

func TestSubmitTurnNewConversation(t *testing.T) {
	h := newHarness(&stubLLM{response: "Try a calm bedtime routine."})
	userId := uuid.New()

	resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		Query: "my toddler fights bedtime every night",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.AgentParentingStyle, resp.AgentType)
	assert.Equal(t, constant.AgentParentingStyle, resp.PrimaryAgent)
	assert.Equal(t, "Try a calm bedtime routine.", resp.Response)

	conv := h.store.conversations[resp.ConversationId]
	require.NotNil(t, conv)
	assert.Equal(t, constant.ScopeModeGeneral, conv.ScopeMode)
	assert.Equal(t, constant.KnownAgents, conv.EnabledAgents)
	assert.Equal(t, []string{constant.AgentParentingStyle}, conv.ParticipatingAgents)
	assert.NotEmpty(t, conv.Summary)
	assert.NotEmpty(t, conv.SummaryEmbedding, "summary embedding must be written with the summary")
	assert.NotEmpty(t, conv.Title)

	require.Len(t, h.store.interactions, 1)
	assert.Equal(t, conv.Id, *h.store.interactions[0].ConversationId)
	assert.Len(t, h.publisher.published, 1)
}

func TestSubmitTurnCrisisRouting(t *testing.T) {
	h := newHarness(&stubLLM{response: "Stay with your child and call for help."})
	userId := uuid.New()

	resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		Query: "this feels like an emergency, he is hurting himself",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.AgentCrisisIntervention, resp.AgentType)
}

func TestSubmitTurnForcedAgent(t *testing.T) {
	h := newHarness(&stubLLM{response: "Here is a resource overview."})
	userId := uuid.New()

	t.Run("forced tag wins over crisis keywords", func(t *testing.T) {
		forced := constant.AgentCommunityConnector
		resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			Query:       "emergency resources near me",
			ForcedAgent: &forced,
		})
		require.NoError(t, err)
		assert.Equal(t, constant.AgentCommunityConnector, resp.AgentType)
	})

	t.Run("forced opening turn locks the conversation", func(t *testing.T) {
		forced := constant.AgentCrisisIntervention
		resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			Query:       "I need help right now",
			ForcedAgent: &forced,
		})
		require.NoError(t, err)

		conv := h.store.conversations[resp.ConversationId]
		require.NotNil(t, conv)
		assert.Equal(t, constant.ScopeModeAgentLocked, conv.ScopeMode)
		require.NotNil(t, conv.LockedAgent)
		assert.Equal(t, constant.AgentCrisisIntervention, *conv.LockedAgent)
		assert.Equal(t, []string{constant.AgentCrisisIntervention}, conv.EnabledAgents)
	})

	t.Run("unknown forced tag is rejected", func(t *testing.T) {
		before := len(h.store.interactions)
		forced := "astrologer"
		_, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			Query:       "anything",
			ForcedAgent: &forced,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidForcedAgent)
		assert.Len(t, h.store.interactions, before, "rejected turns must not be recorded")
	})
}

func TestSubmitTurnExistingConversation(t *testing.T) {
	userId := uuid.New()

	t.Run("unknown conversation", func(t *testing.T) {
		h := newHarness(&stubLLM{response: "ok"})
		convId := uuid.New()
		_, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			ConversationId: &convId,
			Query:          "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrScopeNotFound)
	})

	t.Run("other user's conversation is invisible", func(t *testing.T) {
		h := newHarness(&stubLLM{response: "ok"})
		conv := h.seedConversation(uuid.New(), nil)
		_, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			ConversationId: &conv.Id,
			Query:          "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrScopeNotFound)
	})

	t.Run("ended conversation rejects turns", func(t *testing.T) {
		h := newHarness(&stubLLM{response: "ok"})
		conv := h.seedConversation(userId, func(c *entity.Conversation) {
			c.End(time.Now())
		})
		_, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			ConversationId: &conv.Id,
			Query:          "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrConversationEnded)
	})

	t.Run("held lock rejects concurrent turn", func(t *testing.T) {
		h := newHarness(&stubLLM{response: "ok"})
		conv := h.seedConversation(userId, nil)
		h.locker.denied = true
		_, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			ConversationId: &conv.Id,
			Query:          "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrTurnInProgress)
	})

	t.Run("locked agent routes every turn", func(t *testing.T) {
		h := newHarness(&stubLLM{response: "ok"})
		locked := constant.AgentChildDevelopment
		conv := h.seedConversation(userId, func(c *entity.Conversation) {
			c.LockedAgent = &locked
		})
		resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
			ConversationId: &conv.Id,
			Query:          "this is an emergency", // crisis keywords lose to the lock
		})
		require.NoError(t, err)
		assert.Equal(t, constant.AgentChildDevelopment, resp.AgentType)
	})
}

func TestSubmitTurnFallbackStillRecorded(t *testing.T) {
	h := newHarness(&stubLLM{err: errors.New("provider down")})
	userId := uuid.New()

	resp, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		Query: "how do I handle tantrums",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.AgentFallback, resp.AgentType)
	assert.Equal(t, constant.ResponderFallbackText, resp.Response)
	// fallback turns count toward the aggregate like any other
	assert.Equal(t, constant.AgentFallback, resp.PrimaryAgent)
	require.Len(t, h.store.interactions, 1)
	assert.Equal(t, constant.AgentFallback, h.store.interactions[0].AgentType)
}

func TestSubmitTurnPrimaryAgentRecompute(t *testing.T) {
	h := newHarness(&stubLLM{response: "ok"})
	userId := uuid.New()

	first, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		Query: "local support group for parents",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.AgentCommunityConnector, first.PrimaryAgent)

	// tie: community appeared first, so it stays primary
	second, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		ConversationId: &first.ConversationId,
		Query:          "is her speech delay a milestone concern",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.AgentChildDevelopment, second.AgentType)
	assert.Equal(t, constant.AgentCommunityConnector, second.PrimaryAgent)

	// development pulls ahead
	third, err := h.svc.SubmitTurn(context.Background(), userId, &dto.SubmitTurnRequest{
		ConversationId: &first.ConversationId,
		Query:          "what motor skills should I expect",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.AgentChildDevelopment, third.PrimaryAgent)
}

func TestSubmitTurnCommitFailure(t *testing.T) {
	h := newHarness(&stubLLM{response: "ok"})
	h.store.commitErr = errors.New("deadlock detected")

	_, err := h.svc.SubmitTurn(context.Background(), uuid.New(), &dto.SubmitTurnRequest{
		Query: "hello",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAggregateWriteError(err))
}

func TestEndConversation(t *testing.T) {
	h := newHarness(&stubLLM{response: "ok"})
	userId := uuid.New()
	conv := h.seedConversation(userId, nil)

	first, err := h.svc.EndConversation(context.Background(), userId, conv.Id)
	require.NoError(t, err)
	assert.True(t, first.Ended)
	require.NotNil(t, first.EndedAt)

	// idempotent: second call returns the same end state
	second, err := h.svc.EndConversation(context.Background(), userId, conv.Id)
	require.NoError(t, err)
	assert.Equal(t, *first.EndedAt, *second.EndedAt)

	_, err = h.svc.EndConversation(context.Background(), userId, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrScopeNotFound)
}

func TestUpdateMetadata(t *testing.T) {
	h := newHarness(&stubLLM{response: "ok"})
	userId := uuid.New()
	conv := h.seedConversation(userId, nil)

	t.Run("sets title and lock", func(t *testing.T) {
		title := "Sleep troubles"
		locked := constant.AgentParentingStyle
		resp, err := h.svc.UpdateMetadata(context.Background(), userId, conv.Id, &dto.UpdateConversationMetadataRequest{
			Title:       &title,
			LockedAgent: &locked,
		})
		require.NoError(t, err)
		assert.Equal(t, "Sleep troubles", resp.Title)
		assert.Equal(t, constant.ScopeModeAgentLocked, resp.ScopeMode)
		require.NotNil(t, resp.LockedAgent)
		assert.Equal(t, constant.AgentParentingStyle, *resp.LockedAgent)
		assert.Equal(t, []string{constant.AgentParentingStyle}, resp.EnabledAgents)
	})

	t.Run("general scope mode clears the lock", func(t *testing.T) {
		mode := constant.ScopeModeGeneral
		resp, err := h.svc.UpdateMetadata(context.Background(), userId, conv.Id, &dto.UpdateConversationMetadataRequest{
			ScopeMode: &mode,
		})
		require.NoError(t, err)
		assert.Equal(t, constant.ScopeModeGeneral, resp.ScopeMode)
		assert.Nil(t, resp.LockedAgent)
		assert.Equal(t, constant.KnownAgents, resp.EnabledAgents)
	})

	t.Run("rejects unknown locked agent", func(t *testing.T) {
		locked := "wizard"
		_, err := h.svc.UpdateMetadata(context.Background(), userId, conv.Id, &dto.UpdateConversationMetadataRequest{
			LockedAgent: &locked,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidForcedAgent)
	})

	t.Run("rejects unknown enabled agent", func(t *testing.T) {
		_, err := h.svc.UpdateMetadata(context.Background(), userId, conv.Id, &dto.UpdateConversationMetadataRequest{
			EnabledAgents: []string{constant.AgentParentingStyle, "wizard"},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidForcedAgent)
	})

	t.Run("agent-locked without a lock is invalid", func(t *testing.T) {
		mode := constant.ScopeModeAgentLocked
		_, err := h.svc.UpdateMetadata(context.Background(), userId, conv.Id, &dto.UpdateConversationMetadataRequest{
			ScopeMode: &mode,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
	})
}

func TestListAgents(t *testing.T) {
	h := newHarness(&stubLLM{response: "ok"})
	agents := h.svc.ListAgents()
	require.Len(t, agents, 4)
	assert.Equal(t, constant.AgentParentingStyle, agents[0].Tag)
	for _, agent := range agents {
		assert.NotEmpty(t, agent.DisplayName)
		assert.NotEmpty(t, agent.Description)
	}
}

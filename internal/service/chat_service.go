package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ai-parenting-be/internal/constant"
	"ai-parenting-be/internal/dto"
	"ai-parenting-be/internal/entity"
	"ai-parenting-be/internal/pkg/apperrors"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/internal/repository/specification"
	"ai-parenting-be/internal/repository/unitofwork"
	"ai-parenting-be/pkg/agent/contextbundle"
	"ai-parenting-be/pkg/agent/responder"
	"ai-parenting-be/pkg/agent/router"
	"ai-parenting-be/pkg/agent/summary"
	"ai-parenting-be/pkg/embedding"
	"ai-parenting-be/pkg/events"
	pktNats "ai-parenting-be/pkg/nats"
)

// ConversationLocker serializes turn writes per conversation. Implemented by
// the Redis lease in pkg/lock.
type ConversationLocker interface {
	Acquire(ctx context.Context, conversationId uuid.UUID) (func(), bool)
}

type IChatService interface {
	SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.SubmitTurnRequest) (*dto.SubmitTurnResponse, error)
	ListConversations(ctx context.Context, userId uuid.UUID, query *dto.ListConversationsQuery) ([]*dto.ConversationResponse, error)
	GetInteractions(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.InteractionResponse, error)
	EndConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.EndConversationResponse, error)
	UpdateMetadata(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, req *dto.UpdateConversationMetadataRequest) (*dto.ConversationResponse, error)
	ListAgents() []*dto.AgentInfoResponse
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	embedClient      *embedding.Client
	agentRouter      *router.Router
	bundleBuilder    *contextbundle.Builder
	responderSvc     *responder.Responder
	summarizer       *summary.Summarizer
	convLock         ConversationLocker
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	retrievalK       int
	logger           logger.ILogger
	turnLogger       logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embedClient *embedding.Client,
	agentRouter *router.Router,
	bundleBuilder *contextbundle.Builder,
	responderSvc *responder.Responder,
	summarizer *summary.Summarizer,
	convLock ConversationLocker,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	retrievalK int,
	log logger.ILogger,
	turnLog logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		embedClient:      embedClient,
		agentRouter:      agentRouter,
		bundleBuilder:    bundleBuilder,
		responderSvc:     responderSvc,
		summarizer:       summarizer,
		convLock:         convLock,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		retrievalK:       retrievalK,
		logger:           log,
		turnLogger:       turnLog,
	}
}

// SubmitTurn runs the full turn pipeline: embed, retrieve, route, respond,
// then commit the interaction and the conversation aggregate in a single
// transaction. AI calls all happen before Begin so the transaction stays
// short.
func (s *chatService) SubmitTurn(ctx context.Context, userId uuid.UUID, req *dto.SubmitTurnRequest) (*dto.SubmitTurnResponse, error) {
	readUow := s.uowFactory.NewUnitOfWork(ctx)

	var conv *entity.Conversation
	var childId *uuid.UUID
	isNew := req.ConversationId == nil

	if isNew {
		childId = req.ChildId
	} else {
		release, ok := s.convLock.Acquire(ctx, *req.ConversationId)
		if !ok {
			return nil, apperrors.ErrTurnInProgress
		}
		defer release()

		var err error
		conv, err = readUow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: *req.ConversationId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, apperrors.ErrScopeNotFound
		}
		if conv.Ended {
			return nil, apperrors.ErrConversationEnded
		}
		childId = conv.ChildId
	}

	// 1. Embed the query. A zero vector means the provider was unavailable:
	// retrieval is skipped because cosine distance is undefined against it.
	queryVec, fromProvider := s.embedClient.Embed(ctx, req.Query, embedding.TaskRetrievalQuery)

	var memories []*entity.Interaction
	if fromProvider {
		var err error
		memories, err = readUow.InteractionRepository().SearchSimilar(ctx, queryVec, s.retrievalK, userId, childId)
		if err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("chat", "skipping memory retrieval for zero-vector query", map[string]interface{}{
			"user_id": userId.String(),
		})
	}

	// 2. Route. An explicit forced agent outranks a conversation lock, which
	// outranks keyword classification.
	forced := ""
	if req.ForcedAgent != nil {
		forced = *req.ForcedAgent
	} else if conv != nil && conv.LockedAgent != nil {
		forced = *conv.LockedAgent
	}
	agentTag, err := s.agentRouter.Choose(req.Query, forced)
	if err != nil {
		return nil, err
	}

	// 3. Respond.
	priorSummary := ""
	if conv != nil {
		priorSummary = conv.Summary
	}
	bundle := s.bundleBuilder.Build(ctx, userId, childId, memories, priorSummary)
	result := s.responderSvc.Respond(ctx, agentTag, bundle, req.Query)

	// 4. Prepare everything that needs AI calls before opening the transaction.
	now := time.Now()
	title := ""
	if isNew {
		childName := ""
		if childId != nil {
			if child, err := readUow.ProfileRepository().FindChildById(ctx, *childId); err == nil && child != nil {
				childName = child.Name
			}
		}
		title = s.summarizer.Title(ctx, req.Query, childName)
	}

	interaction := &entity.Interaction{
		Id:          uuid.New(),
		UserId:      userId,
		ChildId:     childId,
		Query:       req.Query,
		Response:    result.Text,
		AgentType:   result.AgentTag,
		MemoryTrace: bundle.MemoryTrace,
		CreatedAt:   now,
	}
	interaction.Embedding, _ = s.embedClient.Embed(ctx, req.Query+"\n"+result.Text, embedding.TaskRetrievalDocument)

	var history []*entity.Interaction
	if conv != nil {
		history, err = readUow.InteractionRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conv.Id},
			specification.OrderBy{Field: "created_at"},
		)
		if err != nil {
			return nil, err
		}
	}
	history = append(history, interaction)

	summaryText := s.summarizer.Summarize(ctx, history)
	summaryVec, _ := s.embedClient.Embed(ctx, summaryText, embedding.TaskRetrievalDocument)

	// 5. Commit the turn atomically.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	if isNew {
		// A forced agent on the opening turn locks the conversation to that
		// persona. The tag was already validated by the router above.
		conv = entity.NewConversation(uuid.New(), userId, childId, title, req.ForcedAgent, now)
		if err := uow.ConversationRepository().Create(ctx, conv); err != nil {
			return nil, apperrors.NewAggregateWriteError(conv.Id.String(), err)
		}
	}

	interaction.ConversationId = &conv.Id
	if err := uow.InteractionRepository().Create(ctx, interaction); err != nil {
		return nil, apperrors.NewAggregateWriteError(conv.Id.String(), err)
	}

	if err := conv.RecordAgent(result.AgentTag); err != nil {
		return nil, err
	}
	conv.SetSummary(summaryText, summaryVec)
	conv.UpdatedAt = now

	if err := uow.ConversationRepository().Update(ctx, conv); err != nil {
		return nil, apperrors.NewAggregateWriteError(conv.Id.String(), err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperrors.NewAggregateWriteError(conv.Id.String(), err)
	}
	committed = true

	s.traceTurn(userId, conv, interaction, result, fromProvider)
	s.publishTurnCompleted(ctx, userId, conv, interaction, result)

	return &dto.SubmitTurnResponse{
		ConversationId: conv.Id,
		InteractionId:  interaction.Id,
		AgentType:      result.AgentTag,
		Response:       result.Text,
		PrimaryAgent:   conv.PrimaryAgent,
		MemoryTrace:    bundle.MemoryTrace,
	}, nil
}

func (s *chatService) traceTurn(userId uuid.UUID, conv *entity.Conversation, interaction *entity.Interaction, result responder.Result, embeddedByProvider bool) {
	details := map[string]interface{}{
		"user_id":         userId.String(),
		"conversation_id": conv.Id.String(),
		"interaction_id":  interaction.Id.String(),
		"agent":           result.AgentTag,
		"primary_agent":   conv.PrimaryAgent,
		"fallback":        result.IsFallback(),
		"zero_vector":     !embeddedByProvider,
	}
	if result.FallbackCause != nil {
		details["fallback_cause"] = result.FallbackCause.Error()
	}
	s.turnLogger.Info("chat", "turn completed", details)
}

func (s *chatService) publishTurnCompleted(ctx context.Context, userId uuid.UUID, conv *entity.Conversation, interaction *entity.Interaction, result responder.Result) {
	msgPayload := dto.PublishTurnCompletedMessage{
		ConversationId: conv.Id,
		InteractionId:  interaction.Id,
		UserId:         userId,
		AgentType:      result.AgentTag,
		UsedFallback:   result.IsFallback(),
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		s.logger.Error("chat", "failed to marshal turn-completed message", map[string]interface{}{"error": err.Error()})
		return
	}
	// Auxiliary: a lost event never fails a committed turn.
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("chat", "failed to publish turn-completed message", map[string]interface{}{"error": err.Error()})
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CHAT_TURN_COMPLETED",
			Data: map[string]interface{}{
				"conversation_id": conv.Id,
				"interaction_id":  interaction.Id,
				"user_id":         userId,
				"agent":           result.AgentTag,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("chat", "failed to publish CHAT_TURN_COMPLETED event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *chatService) ListConversations(ctx context.Context, userId uuid.UUID, query *dto.ListConversationsQuery) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	}
	if query.ChildId != nil {
		specs = append(specs, specification.ChildScope{ChildID: query.ChildId})
	}

	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, toConversationResponse(conv))
	}
	return out, nil
}

func (s *chatService) GetInteractions(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.InteractionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.ErrScopeNotFound
	}

	interactions, err := uow.InteractionRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.InteractionResponse, 0, len(interactions))
	for _, turn := range interactions {
		out = append(out, &dto.InteractionResponse{
			Id:        turn.Id,
			Query:     turn.Query,
			Response:  turn.Response,
			AgentType: turn.AgentType,
			CreatedAt: turn.CreatedAt,
		})
	}
	return out, nil
}

// EndConversation is idempotent: ending an already ended conversation
// returns the existing end state unchanged.
func (s *chatService) EndConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.EndConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.ErrScopeNotFound
	}

	if !conv.Ended {
		conv.End(time.Now())
		if err := uow.ConversationRepository().Update(ctx, conv); err != nil {
			return nil, err
		}
	}

	return &dto.EndConversationResponse{
		Id:      conv.Id,
		Ended:   conv.Ended,
		EndedAt: conv.EndedAt,
		Summary: conv.Summary,
	}, nil
}

func (s *chatService) UpdateMetadata(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, req *dto.UpdateConversationMetadataRequest) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.ErrScopeNotFound
	}

	if req.LockedAgent != nil && *req.LockedAgent != "" && !router.IsKnownAgent(*req.LockedAgent) {
		return nil, apperrors.ErrInvalidForcedAgent
	}
	for _, tag := range req.EnabledAgents {
		if !router.IsKnownAgent(tag) {
			return nil, apperrors.ErrInvalidForcedAgent
		}
	}

	if err := conv.ApplyMetadata(req.Title, req.ScopeMode, req.EnabledAgents, req.LockedAgent); err != nil {
		return nil, err
	}
	if err := uow.ConversationRepository().Update(ctx, conv); err != nil {
		return nil, err
	}
	return toConversationResponse(conv), nil
}

var agentDescriptions = map[string][2]string{
	constant.AgentParentingStyle:     {"Parenting Coach", "Discipline strategies, routines and day-to-day parenting questions."},
	constant.AgentChildDevelopment:   {"Development Specialist", "Milestones, cognitive and motor skill development, age-appropriate expectations."},
	constant.AgentCrisisIntervention: {"Crisis Support", "Steady step-by-step guidance for unsafe or overwhelming situations."},
	constant.AgentCommunityConnector: {"Community Connector", "Finding support groups, therapists and local family resources."},
}

func (s *chatService) ListAgents() []*dto.AgentInfoResponse {
	out := make([]*dto.AgentInfoResponse, 0, len(constant.KnownAgents))
	for _, tag := range constant.KnownAgents {
		info := agentDescriptions[tag]
		out = append(out, &dto.AgentInfoResponse{
			Tag:         tag,
			DisplayName: info[0],
			Description: info[1],
		})
	}
	return out
}

func toConversationResponse(conv *entity.Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		Id:                  conv.Id,
		ChildId:             conv.ChildId,
		Title:               conv.Title,
		ScopeMode:           conv.ScopeMode,
		LockedAgent:         conv.LockedAgent,
		EnabledAgents:       conv.EnabledAgents,
		ParticipatingAgents: conv.ParticipatingAgents,
		PrimaryAgent:        conv.PrimaryAgent,
		Summary:             conv.Summary,
		Ended:               conv.Ended,
		EndedAt:             conv.EndedAt,
		CreatedAt:           conv.CreatedAt,
		UpdatedAt:           conv.UpdatedAt,
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ai-parenting-be/internal/dto"
	"ai-parenting-be/internal/model"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/internal/repository/unitofwork"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the turn-completed queue, materializes a
// notification row for the caregiver's inbox and acks. Delivery to devices
// happens elsewhere, fed by the NATS event the chat service publishes.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTurnCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal turn-completed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages never become processable, drop them
		return
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"conversation_id": payload.ConversationId,
		"interaction_id":  payload.InteractionId,
		"agent":           payload.AgentType,
		"used_fallback":   payload.UsedFallback,
	})

	notification := &model.Notification{
		Id:        uuid.New(),
		UserId:    payload.UserId,
		TypeCode:  "CHAT_TURN_COMPLETED",
		Title:     "Your answer is ready",
		Message:   "A specialist has replied in your conversation.",
		Metadata:  datatypes.JSON(metadata),
		CreatedAt: time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
		cs.logger.Error("consumer", "failed to store notification", map[string]interface{}{
			"user_id": payload.UserId.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

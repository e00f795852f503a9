package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ai-parenting-be/internal/config"
	"ai-parenting-be/internal/controller"
	"ai-parenting-be/internal/pkg/logger"
	"ai-parenting-be/internal/repository/implementation"
	"ai-parenting-be/internal/repository/unitofwork"
	"ai-parenting-be/internal/service"
	"ai-parenting-be/pkg/agent/contextbundle"
	"ai-parenting-be/pkg/agent/responder"
	"ai-parenting-be/pkg/agent/router"
	"ai-parenting-be/pkg/agent/summary"
	"ai-parenting-be/pkg/embedding"
	"ai-parenting-be/pkg/llm/factory"
	"ai-parenting-be/pkg/lock"
	pktNats "ai-parenting-be/pkg/nats"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background services, run by main.go
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	turnLogger := logger.NewIsolatedLogger(cfg.App.TurnLogFilePath)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	callTimeout := time.Duration(cfg.Ai.CallTimeoutSeconds) * time.Second
	embedClient := embedding.NewClient(embeddingProvider, cfg.Ai.EmbeddingDimension, callTimeout, sysLogger)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	convLock := lock.NewConversationLock(redisClient, sysLogger)

	// 5. Agent components. Profile reads bypass the UoW: they are read-only
	// lookups against tables owned by another subsystem.
	profileRepo := implementation.NewProfileRepository(db)
	bundleBuilder := contextbundle.NewBuilder(profileRepo, sysLogger)
	agentRouter := router.New()
	responderSvc := responder.NewResponder(llmProvider, sysLogger)
	summarizer := summary.NewSummarizer(llmProvider, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.TurnTopic, pubSub)
	chatService := service.NewChatService(
		uowFactory,
		embedClient,
		agentRouter,
		bundleBuilder,
		responderSvc,
		summarizer,
		convLock,
		publisherService,
		natsPub,
		cfg.Ai.RetrievalK,
		sysLogger,
		turnLogger,
	)
	consumerService := service.NewConsumerService(pubSub, cfg.App.TurnTopic, uowFactory, sysLogger)

	// 7. Controllers
	chatController := controller.NewChatController(chatService)

	return &Container{
		ChatController:  chatController,
		ConsumerService: consumerService,
	}
}

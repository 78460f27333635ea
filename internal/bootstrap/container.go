package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ai-studymate-be/internal/config"
	"ai-studymate-be/internal/controller"
	"ai-studymate-be/internal/pkg/logger"
	"ai-studymate-be/internal/repository/memory"
	"ai-studymate-be/internal/repository/unitofwork"
	"ai-studymate-be/internal/service"
	"ai-studymate-be/pkg/assistant"
	"ai-studymate-be/pkg/embedding"
	"ai-studymate-be/pkg/llm/factory"
	pktNats "ai-studymate-be/pkg/nats"
	"ai-studymate-be/pkg/persona"
	"ai-studymate-be/pkg/respcache"
	"ai-studymate-be/pkg/resilience"
	"ai-studymate-be/pkg/search"
)

// generationFailureThreshold is how many consecutive provider failures trip
// the generation circuit.
const generationFailureThreshold = 3

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := initPipelineLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.FastModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (fast=%s deep=%s)",
		cfg.Ai.LLMProvider, cfg.Ai.FastModel, cfg.Ai.DeepModel)

	// 4. Stores
	sessionRepo := memory.NewSessionRepository()

	var cacheStore respcache.Store
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory response cache", err)
		cacheStore = respcache.NewMemoryStore()
	} else {
		cacheStore = respcache.NewRedisStore(rdb)
	}
	responseCache := respcache.New(cacheStore, pipelineLogger)

	// 5. NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 6. Pipeline Components
	searchEngine := search.NewEngine(embeddingProvider, pipelineLogger, search.Config{
		SemanticWeight: cfg.Retrieval.SemanticWeight,
		KeywordWeight:  cfg.Retrieval.KeywordWeight,
		DualMatchBonus: cfg.Retrieval.DualMatchBonus,
		TopK:           cfg.Retrieval.TopK,
		EmbedTimeout:   cfg.Ai.EmbedTimeout,
	})

	health := resilience.NewHealthTracker(generationFailureThreshold)
	chunkRepo := uowFactory.NewUnitOfWork(context.Background()).ContentChunkRepository()

	assembler := assistant.NewAssembler(
		searchEngine,
		chunkRepo,
		responseCache,
		persona.NewController(),
		llmProvider,
		health,
		pipelineLogger,
		assistant.Config{
			FastModel:      cfg.Ai.FastModel,
			DeepModel:      cfg.Ai.DeepModel,
			RouteThreshold: cfg.Retrieval.RouteThreshold,
			GenTimeout:     cfg.Ai.GenTimeout,
			MaxResults:     cfg.Retrieval.MaxResults,
			CacheTTL:       cfg.Cache.TTL,
		},
	)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Keys.TurnTopic, pubSub)

	turnLogger := logger.NewIsolatedLogger("logs/turns.log")
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.TurnTopic,
		natsPub,
		turnLogger,
	)

	assistantService := service.NewAssistantService(
		uowFactory,
		assembler,
		sessionRepo,
		publisherService,
		sysLogger,
	)

	// 8. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		ConsumerService:     consumerService,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"partner-incentives-be/internal/config"
	"partner-incentives-be/internal/controller"
	"partner-incentives-be/internal/pkg/logger"
	"partner-incentives-be/internal/repository/implementation"
	"partner-incentives-be/internal/service"
	"partner-incentives-be/pkg/calc"
	"partner-incentives-be/pkg/decision"
	"partner-incentives-be/pkg/embedding"
	"partner-incentives-be/pkg/llm"
	"partner-incentives-be/pkg/market"
	pktNats "partner-incentives-be/pkg/nats"
	"partner-incentives-be/pkg/retrieval"
	"partner-incentives-be/pkg/session"
	"partner-incentives-be/pkg/synthesis"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	AssistantController controller.IAssistantController

	// Exposed for the server's readiness probe.
	DB *gorm.DB
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Session storage: Redis when reachable, in-process fallback otherwise.
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	var sessions session.Store
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
		sessions = session.NewMemoryStore(sessionTTL)
	} else {
		sessions = session.NewRedisStore(rdb, sessionTTL)
	}

	// NATS is optional: turn analytics degrade to logs when it is down.
	var turnPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		turnPublisher = natsPub
	}

	// OpenAI gateways: one embedder, one fast decision model, one answer model.
	embedOpts := []embedding.OpenAIOption{
		embedding.WithModel(cfg.Ai.EmbedModel),
		embedding.WithDimensions(cfg.Ai.EmbedDimensions),
	}
	if cfg.Ai.OpenAIBaseURL != "" {
		embedOpts = append(embedOpts, embedding.WithBaseURL(cfg.Ai.OpenAIBaseURL))
	}
	embedder := embedding.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, embedOpts...)

	llmOpts := []llm.OpenAIOption{
		llm.WithRequestTimeout(time.Duration(cfg.Ai.RequestTimeoutS) * time.Second),
	}
	if cfg.Ai.OpenAIBaseURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(cfg.Ai.OpenAIBaseURL))
	}
	decisionLLM := llm.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.DecisionModel, llmOpts...)
	answerLLM := llm.NewOpenAIProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.AnswerModel, llmOpts...)

	chunkRepo := implementation.NewChunkRepository(db)
	searchEngine := retrieval.NewEngine(chunkRepo, sysLogger, cfg.Search.PreferredKind)
	decisionEngine := decision.NewEngine(decisionLLM, sysLogger)
	synthesisEngine := synthesis.NewEngine(answerLLM, sysLogger)

	assistantService := service.NewAssistantService(
		sessions,
		embedder,
		searchEngine,
		decisionEngine,
		synthesisEngine,
		market.NewResolver(),
		calc.Load(),
		turnPublisher,
		sysLogger,
	)

	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		DB:                  db,
	}
}

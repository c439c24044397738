package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ai-tutor/internal/config"
	"ai-tutor/internal/db"
	"ai-tutor/internal/domain"
	apihttp "ai-tutor/internal/http"
	"ai-tutor/internal/imagegen"
	"ai-tutor/internal/llm"
	"ai-tutor/internal/repository"
	"ai-tutor/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	upstreamTimeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel, upstreamTimeout, zap.NewStdLog(logger))

	var imageClient imagegen.Generator
	imageConfigured := false
	if cfg.ImageBaseURL != "" {
		client := imagegen.NewHTTPClient(cfg.ImageBaseURL, cfg.ImageAPIKey, cfg.ImageModel, upstreamTimeout)
		imageClient = client
		imageConfigured = client.Configured()
	} else {
		logger.Warn("image backend not configured")
	}

	var limiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisChatRateLimiter(redisClient, time.Duration(cfg.ChatRateLimitWindow)*time.Second, cfg.ChatRateLimitMax)
		}
		cancel()
	}

	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	if verifier == nil {
		logger.Warn("jwt secret not configured, requests run anonymous")
	}

	contextSvc := service.NewBasicContextService(messageRepo)
	memorySvc := service.NewMemoryService(llmClient, memoryRepo, logger)
	router := service.NewToolRouter()
	executors := map[domain.Tool]service.ToolExecutor{
		domain.ToolChat:         service.NewChatExecutor(llmClient),
		domain.ToolReport:       service.NewReportExecutor(llmClient),
		domain.ToolPresentation: service.NewPresentationExecutor(llmClient, imageClient, logger),
		domain.ToolDiagram:      service.NewDiagramExecutor(llmClient),
		domain.ToolImage:        service.NewImageExecutor(imageClient),
	}
	supervisor := service.NewSupervisor(logger, router, executors, sessionRepo, messageRepo, contextSvc, memorySvc, limiter, upstreamTimeout)

	chatHandler := apihttp.NewChatHandler(logger, supervisor)
	sessionHandler := apihttp.NewSessionHandler(logger, sessionRepo, messageRepo, memorySvc)
	imageHandler := apihttp.NewImageHandler(logger, imageClient)
	healthHandler := apihttp.NewHealthHandler("ai-tutor", cfg.LLMProvider, cfg.LLMModel, cfg.ImageModel, cfg.LLMAPIKey != "", imageConfigured)
	engine := apihttp.NewRouter(logger, verifier, chatHandler, sessionHandler, imageHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

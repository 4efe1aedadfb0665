package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentor-backend/internal/ai/orchestrator"
	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/ai/rag"
	"mentor-backend/internal/api"
	"mentor-backend/internal/config"
	"mentor-backend/internal/handlers"
	"mentor-backend/internal/integrations/exa"
	"mentor-backend/internal/integrations/maps"
	"mentor-backend/internal/integrations/mem0"
	"mentor-backend/internal/integrations/yt"
	"mentor-backend/internal/services"
	"mentor-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// embeddingDimensions matches the width the chunk index was built with.
const embeddingDimensions = 768

// Provider model names behind the registry ids.
const (
	largeModelName = "gemini-2.0-flash-001"
	smallModelName = "gemini-2.0-flash-lite-001"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting mentor backend")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("unable to create database connection pool", zap.Error(err))
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		logger.Fatal("unable to ping database", zap.Error(err))
	}
	logger.Info("database connection pool established")

	pgStore := postgres.NewPostgresStore(dbpool, logger)

	// 3. Initialize the model endpoints
	genaiClient, err := provider.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}

	registry := provider.NewRegistry(cfg.DefaultChatModel)
	registry.Register(cfg.DefaultChatModel, provider.NewGeminiModel(genaiClient, largeModelName, logger))
	registry.Register(cfg.SmallModel, provider.NewGeminiModel(genaiClient, smallModelName, logger))
	registry.Register(cfg.TitleModel, provider.NewGeminiModel(genaiClient, smallModelName, logger))

	embedder := provider.NewGeminiEmbedder(genaiClient, cfg.EmbeddingModel, embeddingDimensions)

	smallModel, err := registry.Resolve(cfg.SmallModel)
	if err != nil {
		logger.Fatal("small model not registered", zap.Error(err))
	}

	// 4. Initialize integrations. Missing keys disable the capability rather
	// than failing startup.
	integrations := services.Integrations{}
	if cfg.ExaAPIKey != "" {
		exaClient := exa.NewClient(cfg.ExaAPIKey)
		integrations.Papers = exaClient
		integrations.Videos = exaClient
	} else {
		logger.Warn("EXA_API_KEY not set, search tools disabled")
	}
	if cfg.Mem0APIKey != "" {
		integrations.Memory = mem0.NewClient(cfg.Mem0APIKey)
	} else {
		logger.Warn("MEM0_API_KEY not set, memory tool disabled")
	}
	if cfg.GoogleMapsAPIKey != "" {
		integrations.Timezone = maps.NewTimezoneClient(cfg.GoogleMapsAPIKey)
	}
	if cfg.YTEndpoint != "" {
		integrations.Metadata = yt.NewClient(cfg.YTEndpoint)
	}

	// 5. Initialize the turn pipeline
	retrieval := rag.NewMiddleware(smallModel, embedder, pgStore, cfg.RetrievalK, cfg.AuxTimeout, logger)
	orch := orchestrator.New(smallModel, orchestrator.Config{
		MaxSteps:    cfg.MaxSteps,
		ToolTimeout: cfg.ToolTimeout,
	}, logger)

	// 6. Initialize Services
	authService := services.NewAuthService(pgStore, cfg, logger)
	chatService := services.NewChatService(pgStore, registry, orch, retrieval, integrations, cfg, logger)
	fileService := services.NewFileService(pgStore, embedder, logger)

	// 7. Initialize Handlers and Router
	router := api.NewRouter(api.RouterDependencies{
		AuthHandler: handlers.NewAuthHandler(authService, logger),
		ChatHandler: handlers.NewChatHandler(chatService, logger),
		FileHandler: handlers.NewFileHandler(fileService, logger),
		Config:      cfg,
		Logger:      logger,
	})

	// 8. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// WriteTimeout stays generous: /v1/chat streams for the whole turn.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stopChan
	logger.Info("shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}

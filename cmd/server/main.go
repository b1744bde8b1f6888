package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"habittracker/internal/config"
	"habittracker/internal/db"
	"habittracker/internal/entitlement"
	"habittracker/internal/handler"
	"habittracker/internal/httpserver"
	"habittracker/internal/openai"
	"habittracker/internal/repository"
	"habittracker/internal/service"
	"habittracker/internal/settings"
	"habittracker/pkg/logger"
	"habittracker/pkg/mq"
	redisclient "habittracker/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.EnsureSchema(context.Background(), dbConn, zapLogger); err != nil {
		zapLogger.Fatal("Schema initialization failed", zap.Error(err))
	}

	// 3. Init Redis settings store
	store := settings.NewRedisStoreWithClient(redisclient.NewClient(cfg.Redis))
	defer store.Close()
	if err := store.Ping(context.Background()); err != nil {
		zapLogger.Fatal("Redis initialization failed", zap.Error(err))
	}
	weeklyCache := settings.NewWeeklyCache(store)

	// 4. Init RabbitMQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	// 5. Init repositories
	habitRepo := repository.NewHabitRepository(dbConn, zapLogger)
	recordRepo := repository.NewRecordRepository(dbConn, zapLogger)
	reviewRepo := repository.NewReviewRepository(dbConn, zapLogger)

	// 6. Init subscription entitlements
	verifier := entitlement.NewHTTPVerifier(cfg.Entitlement.BaseURL, cfg.Entitlement.Secret, zapLogger)
	manager := entitlement.NewManager(store, verifier, cfg.Entitlement.ProductID, publisher, zapLogger)
	manager.RefreshAsync(context.Background())

	// 7. Init services
	aiClient := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	statsService := service.NewStatsService(recordRepo, zapLogger)
	habitService := service.NewHabitService(habitRepo, recordRepo, manager, weeklyCache, publisher, zapLogger)
	reviewService := service.NewReviewService(reviewRepo, weeklyCache, publisher, zapLogger)
	suggestionService := service.NewSuggestionService(
		habitRepo, statsService, reviewRepo, weeklyCache, store,
		manager, aiClient, cfg.OpenAI.APIKey, zapLogger)

	// 8. Init handlers
	handlers := httpserver.Handlers{
		Habits:        handler.NewHabitHandler(habitService, zapLogger),
		Stats:         handler.NewStatsHandler(habitService, statsService, zapLogger),
		Reviews:       handler.NewReviewHandler(reviewService, zapLogger),
		Suggestions:   handler.NewSuggestionHandler(suggestionService, zapLogger),
		Subscriptions: handler.NewSubscriptionHandler(manager, zapLogger),
		Settings:      handler.NewSettingsHandler(store, zapLogger),
	}

	// 9. Init router and run
	router := httpserver.NewRouter(handlers, zapLogger, dbConn, store, publisher)

	zapLogger.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		zapLogger.Fatal("server start failed", zap.Error(err))
	}
}

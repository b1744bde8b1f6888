package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/config"
	"habittracker/internal/db"
	"habittracker/internal/mqhandler"
	"habittracker/internal/repository"
	"habittracker/pkg/logger"
	"habittracker/pkg/mq"
	redisclient "habittracker/pkg/redis"
	"habittracker/pkg/util"
)

func main() {
	// Load config
	cfg := config.Load()

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	zapLogger.Info("Starting activity worker...")

	// Init Redis for message dedup
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduper(rdb, time.Hour, zapLogger)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.EnsureSchema(context.Background(), dbConn, zapLogger); err != nil {
		zapLogger.Fatal("Schema initialization failed", zap.Error(err))
	}

	zapLogger.Info("Database connection established")

	// Init DLQ publisher for messages that repeatedly fail to persist
	dlqPublisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		zapLogger.Fatal("failed to init DLQ publisher", zap.Error(err))
	}
	defer dlqPublisher.Close()
	if err := dlqPublisher.SetupDLQ("habit.activity", "#"); err != nil {
		zapLogger.Fatal("failed to set up DLQ", zap.Error(err))
	}

	// Init repository and handler
	activityRepo := repository.NewActivityRepository(dbConn, zapLogger)
	activityHandler := mqhandler.NewActivityHandler(activityRepo, deduper, dlqPublisher, zapLogger)

	// Consumer bound to every event on the habit.events exchange
	zapLogger.Info("Initializing activity consumer", zap.String("queue", "habit.activity.q"))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "habit.activity.q", "#", zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init activity consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(activityHandler.Handle)

	zapLogger.Info("Starting activity consumer")
	if err := consumer.StartConsuming(); err != nil {
		zapLogger.Fatal("activity consumer failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyclecoach/internal/api"
	"cyclecoach/internal/config"
	"cyclecoach/internal/repository/mongo"
	"cyclecoach/internal/service"
	"cyclecoach/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting cyclecoach server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("db", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("subscriptions"))
		mongo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("training_plans"))
		mongo.EnsureSessionLogIndexes(ctx, appDB.Collection("session_logs"))
		mongo.EnsureTemplateIndexes(ctx, appDB.Collection("exercise_templates"))
		mongo.EnsureGroupSessionIndexes(ctx, appDB.Collection("group_sessions"))
		mongo.EnsureReportIndexes(ctx, appDB.Collection("session_reports"))
		logger.Info("index creation completed")
	}()

	// --- Report Archive (optional) ---
	var reportStorage storage.ReportStorage
	if cfg.S3.BucketName != "" {
		reportStorage, err = storage.NewS3Storage(cfg.S3, logger)
		if err != nil {
			logger.Fatal("failed to initialize S3 report storage", zap.Error(err))
		}
	} else {
		logger.Warn("no report bucket configured, session reports will not be archived")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	subRepo := mongo.NewMongoSubscriptionRepository(appDB)
	planRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	sessionLogRepo := mongo.NewMongoSessionLogRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	groupSessionRepo := mongo.NewMongoGroupSessionRepository(appDB)
	reportRepo := mongo.NewMongoReportRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	rosterService := service.NewRosterService(userRepo, subRepo, logger)
	scheduleService := service.NewScheduleService(subRepo, planRepo, sessionLogRepo, userRepo, logger)
	templateService := service.NewTemplateService(templateRepo, logger)
	groupSessionService := service.NewGroupSessionService(groupSessionRepo, reportRepo, reportStorage, logger)

	// --- Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()

	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, rosterService, scheduleService, templateService, groupSessionService)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swharr/TrailblazerAI-sub001/internal/ai"
	"github.com/swharr/TrailblazerAI-sub001/internal/application"
	"github.com/swharr/TrailblazerAI-sub001/internal/auth"
	"github.com/swharr/TrailblazerAI-sub001/internal/config"
	"github.com/swharr/TrailblazerAI-sub001/internal/database"
	"github.com/swharr/TrailblazerAI-sub001/internal/events"
	"github.com/swharr/TrailblazerAI-sub001/internal/handler"
	"github.com/swharr/TrailblazerAI-sub001/internal/health"
	"github.com/swharr/TrailblazerAI-sub001/internal/logger"
	"github.com/swharr/TrailblazerAI-sub001/internal/middleware"
	"github.com/swharr/TrailblazerAI-sub001/internal/repository"
	"go.uber.org/zap"
)

const serviceName = "trailblazer-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting trailblazer-api",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.RouteModel{}, &repository.AnalysisModel{}, &repository.TrailModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := events.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize AI proxy client
	aiClient := ai.New(cfg.AIProxy.BaseURL, cfg.AIProxy.Timeout, log)

	// Initialize repositories
	routeRepo := repository.NewGormRouteRepository(db)
	analysisRepo := repository.NewGormAnalysisRepository(db)
	trailRepo := repository.NewGormTrailRepository(db)

	// Initialize application services
	routeService := application.NewRouteService(routeRepo, kafkaProducer, log)
	analysisService := application.NewAnalysisService(analysisRepo, aiClient, kafkaProducer, log)
	trailService := application.NewTrailService(trailRepo, aiClient, log)

	// Initialize and start the analysis request consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + serviceName
	analysisConsumer := events.NewAnalysisRequestConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		analysisService,
		log,
	)
	defer func() { _ = analysisConsumer.Close() }()

	go func() {
		log.Info("starting analysis request consumer")
		if err := analysisConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("analysis request consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(routeService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	trailHandler := handler.NewTrailHandler(trailService)
	adminHandler := handler.NewAdminHandler(routeService, analysisService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName, aiClient.Healthy(ctx))
	healthHandler.RegisterRoutes(router)

	// Register routes
	routeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	analysisHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	trailHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down trailblazer-api...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("trailblazer-api stopped")
}

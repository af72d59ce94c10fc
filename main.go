package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/bhojsoft/testseries-service/internal/auth"
	"github.com/bhojsoft/testseries-service/internal/cache"
	"github.com/bhojsoft/testseries-service/internal/config"
	"github.com/bhojsoft/testseries-service/internal/events"
	"github.com/bhojsoft/testseries-service/internal/handlers"
	"github.com/bhojsoft/testseries-service/internal/mailer"
	"github.com/bhojsoft/testseries-service/internal/repositories/postgres"
	"github.com/bhojsoft/testseries-service/internal/services"
	"github.com/bhojsoft/testseries-service/internal/utils"
	"github.com/bhojsoft/testseries-service/internal/validator"
	"github.com/bhojsoft/testseries-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis backs OTPs and reset tokens; the service runs without it but
	// those flows return errors until it comes back.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, OTP and reset flows disabled", "error", err)
			redisClient = nil
		}
	}
	otpStore := cache.NewOTPStore(redisClient, cfg.OTPTTL)

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.SendGridAPIKey != "" {
		mail = mailer.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom)
	}

	// Activity events flow through Kafka when brokers are configured,
	// otherwise through the in-process mock publisher.
	var publisher events.EventPublisher
	var consumer *events.KafkaEventConsumer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to create kafka publisher: %v", err)
		}
		publisher = kafkaPublisher

		consumer, err = events.NewKafkaEventConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "testseries-notifications", slogLogger)
		if err != nil {
			log.Fatalf("Failed to create kafka consumer: %v", err)
		}
	} else {
		logger.Warn("No Kafka brokers configured, using in-process event publisher")
		publisher = events.NewMockEventPublisher(slogLogger)
	}

	repoManager := postgres.NewRepositoryManager(db, redisClient)
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	resolver := auth.NewPrincipalResolver(repo)

	serviceManager := services.NewServiceManager(services.ServiceManagerDeps{
		Repo:            repo,
		Tokens:          tokens,
		OTPStore:        otpStore,
		Mailer:          mail,
		EventPublisher:  publisher,
		Logger:          slogLogger,
		Validator:       validator.New(),
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Consume activity events into stored notifications.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if consumer != nil {
		go func() {
			if err := consumer.Run(consumerCtx, serviceManager.Notification().HandleEvent); err != nil {
				logger.Error("Event consumer stopped", "error", err)
			}
		}()
	} else if mock, ok := publisher.(*events.MockEventPublisher); ok {
		mock.Subscribe(serviceManager.Notification().HandleEvent)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, tokens, resolver, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopConsumer()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Printf("Failed to close event consumer: %v", err)
		}
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

package main

import (
	"alcyxob/fitcoach/internal/ai"
	"alcyxob/fitcoach/internal/api"
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/payment"
	"alcyxob/fitcoach/internal/repository/mongo"
	"alcyxob/fitcoach/internal/service"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Fitness Coaching API
// @version 1.0
// @description Trainers, clients, routines, messaging, reviews, payments and routine generation.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.New("info").Fatalw("could not load config", "error", err)
	}

	var log *logger.Logger
	if cfg.Log.Development {
		log = logger.NewDevelopment()
	} else {
		log = logger.New(cfg.Log.Level)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("starting fitness coaching server", "address", cfg.Server.Address, "mode", cfg.Server.Mode)
	if cfg.Auth.AllowUserIDParam {
		log.Warn("user_id query authentication is enabled; do not run this in production")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalw("could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorw("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Infow("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Errorw("index creation finished with errors", "error", err)
			return
		}
		log.Info("index creation completed")
	}()

	// --- External adapters ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Errorw("file storage disabled", "error", err)
			fileStorage = nil
		}
	} else {
		log.Info("no S3 bucket configured; profile images disabled")
	}

	var processor payment.Processor
	if stripeProcessor := payment.NewStripeProcessor(cfg.Stripe); stripeProcessor != nil {
		processor = stripeProcessor
	} else {
		log.Info("no Stripe key configured; payments run without a processor")
	}

	var generator ai.Generator
	if openAIGenerator := ai.NewOpenAIGenerator(cfg.OpenAI); openAIGenerator != nil {
		generator = openAIGenerator
	} else {
		log.Info("no OpenAI key configured; using the local routine generator")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Errorw("event publishing disabled", "error", err)
		} else {
			publisher = rabbit
		}
	}
	defer publisher.Close()

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	reviewRepo := mongo.NewMongoReviewRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)
	generatedRepo := mongo.NewMongoGeneratedRoutineRepository(appDB)

	// --- Initialize Services ---
	routineService := service.NewRoutineService(routineRepo, exerciseRepo)
	services := api.Services{
		Auth:          service.NewAuthService(userRepo, cfg.JWT),
		Users:         service.NewUserService(userRepo, fileStorage, log),
		Exercises:     service.NewExerciseService(exerciseRepo),
		Routines:      routineService,
		Assignments:   service.NewAssignmentService(assignmentRepo, routineRepo, userRepo, publisher, log),
		Messages:      service.NewMessageService(messageRepo, userRepo, publisher, log),
		Reviews:       service.NewReviewService(reviewRepo, userRepo),
		Payments:      service.NewPaymentService(paymentRepo, userRepo, processor, publisher, log, cfg.Stripe.DefaultCurrency),
		Subscriptions: service.NewSubscriptionService(subscriptionRepo, userRepo, publisher, log, cfg.Stripe.DefaultCurrency),
		Generator:     service.NewGeneratorService(generatedRepo, exerciseRepo, routineService, generator, cfg.OpenAI.Timeout, log),
	}

	// --- Initialize Gin Engine ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware(), api.RequestLogger(log))

	api.SetupRoutes(router, &cfg, services, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("ListenAndServe failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
}

package api

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Exercises     service.ExerciseService
	Routines      service.RoutineService
	Assignments   service.AssignmentService
	Messages      service.MessageService
	Reviews       service.ReviewService
	Payments      service.PaymentService
	Subscriptions service.SubscriptionService
	Generator     service.GeneratorService
}

func SetupRoutes(router *gin.Engine, cfg *config.Config, svc Services, log *logger.Logger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	userHandler := NewUserHandler(svc.Users, log)
	trainerHandler := NewTrainerHandler(svc.Users, log)
	exerciseHandler := NewExerciseHandler(svc.Exercises, log)
	routineHandler := NewRoutineHandler(svc.Routines, log)
	assignmentHandler := NewAssignmentHandler(svc.Assignments, log)
	messageHandler := NewMessageHandler(svc.Messages, log)
	reviewHandler := NewReviewHandler(svc.Reviews, log)
	paymentHandler := NewPaymentHandler(svc.Payments, log)
	subscriptionHandler := NewSubscriptionHandler(svc.Subscriptions, log)
	generatorHandler := NewGeneratorHandler(svc.Generator, log)

	authMiddleware := AuthMiddleware(svc.Auth, cfg.Auth.AllowUserIDParam)
	generateLimiter := NewRateLimiter(cfg.RateLimit.GenerateRPS, cfg.RateLimit.GenerateBurst, log)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)
	clientOnly := RoleMiddleware(domain.RoleClient)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Authenticated by the processor signature, not a user token.
		apiV1.POST("/payments/webhook", paymentHandler.Webhook)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Users ---
		protected.GET("/me", userHandler.GetMe)
		protected.PATCH("/me", userHandler.UpdateMe)
		protected.POST("/me/profile-image/upload-url", userHandler.RequestProfileImageUpload)
		protected.PUT("/me/profile-image", userHandler.ConfirmProfileImage)
		protected.GET("/users/:userId", userHandler.GetUser)

		trainers := protected.Group("/trainers")
		{
			trainers.GET("", userHandler.ListTrainers)
			trainers.GET("/:trainerId/reviews", reviewHandler.ListTrainerReviews)
			trainers.POST("/:trainerId/reviews", reviewHandler.CreateReview)
			trainers.GET("/:trainerId/stats", reviewHandler.TrainerStats)
		}

		// --- Trainer roster ---
		trainerAPI := protected.Group("/trainer")
		trainerAPI.Use(trainerOnly)
		{
			trainerAPI.POST("/clients", trainerHandler.AddClientByEmail)
			trainerAPI.GET("/clients", trainerHandler.GetManagedClients)
		}

		// --- Exercise catalog ---
		exercises := protected.Group("/exercises")
		{
			exercises.GET("", exerciseHandler.ListExercises)
			exercises.GET("/:exerciseId", exerciseHandler.GetExercise)
			exercises.POST("", trainerOnly, exerciseHandler.CreateExercise)
			exercises.PUT("/:exerciseId", trainerOnly, exerciseHandler.UpdateExercise)
			exercises.DELETE("/:exerciseId", trainerOnly, exerciseHandler.DeleteExercise)
		}

		// --- Routines ---
		routines := protected.Group("/routines")
		{
			routines.GET("/:routineId", routineHandler.GetRoutine)
			routines.GET("", trainerOnly, routineHandler.ListRoutines)
			routines.POST("", trainerOnly, routineHandler.CreateRoutine)
			routines.PUT("/:routineId", trainerOnly, routineHandler.UpdateRoutine)
			routines.DELETE("/:routineId", trainerOnly, routineHandler.DeleteRoutine)
			routines.POST("/:routineId/exercises", trainerOnly, routineHandler.AddExercise)
			routines.DELETE("/:routineId/exercises/:linkId", trainerOnly, routineHandler.RemoveExercise)
		}

		// --- Assignments ---
		assignments := protected.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.ListAssignments)
			assignments.GET("/:assignmentId", assignmentHandler.GetAssignment)
			assignments.POST("", trainerOnly, assignmentHandler.AssignRoutine)
			assignments.POST("/:assignmentId/complete", assignmentHandler.CompleteAssignment)
			assignments.POST("/:assignmentId/cancel", trainerOnly, assignmentHandler.CancelAssignment)
		}

		// --- Messaging ---
		protected.GET("/conversations", messageHandler.ListConversations)
		protected.GET("/conversations/:userId", messageHandler.GetThread)
		protected.POST("/conversations/:userId/read", messageHandler.MarkThreadRead)
		messages := protected.Group("/messages")
		{
			messages.POST("", messageHandler.SendMessage)
			messages.GET("/unread", messageHandler.UnreadCount)
			messages.POST("/:messageId/read", messageHandler.MarkRead)
			messages.DELETE("/:messageId", messageHandler.DeleteMessage)
		}

		// --- Reviews ---
		protected.PUT("/reviews/:reviewId", reviewHandler.UpdateReview)
		protected.DELETE("/reviews/:reviewId", reviewHandler.DeleteReview)

		// --- Payments ---
		payments := protected.Group("/payments")
		{
			payments.GET("", paymentHandler.ListPayments)
			payments.POST("", clientOnly, paymentHandler.CreatePayment)
			payments.GET("/:paymentId", paymentHandler.GetPayment)
			payments.POST("/:paymentId/confirm", paymentHandler.ConfirmPayment)
			payments.POST("/:paymentId/cancel", paymentHandler.CancelPayment)
		}

		// --- Subscriptions ---
		subscriptions := protected.Group("/subscriptions")
		{
			subscriptions.GET("", subscriptionHandler.ListSubscriptions)
			subscriptions.POST("", clientOnly, subscriptionHandler.Subscribe)
			subscriptions.POST("/:subscriptionId/cancel", subscriptionHandler.CancelSubscription)
		}

		// --- Routine generator ---
		generated := protected.Group("/generated-routines")
		{
			generated.POST("", generateLimiter.Middleware(), generatorHandler.GenerateRoutine)
			generated.GET("", generatorHandler.ListGeneratedRoutines)
			generated.GET("/:generatedId", generatorHandler.GetGeneratedRoutine)
			generated.POST("/:generatedId/save", trainerOnly, generatorHandler.SaveGeneratedRoutine)
		}
	}
}

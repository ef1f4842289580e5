package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/carelink/backend/config"
	"github.com/carelink/backend/internal/auth"
	"github.com/carelink/backend/internal/cache"
	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/handlers"
	"github.com/carelink/backend/internal/middleware"
	"github.com/carelink/backend/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Connect to Redis
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.API.NotificationCacheTTLSec)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Running without Redis - notification summaries will be computed per request")
		redis = nil
	} else {
		defer redis.Close()
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService)
	msgHandler := handlers.NewMessageHandler(msgRepo, convRepo, userRepo, assignRepo, redis)
	adminHandler := handlers.NewAdminHandler(msgRepo, auditRepo)
	assignHandler := handlers.NewAssignmentHandler(assignRepo, userRepo)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitMessagesPerSec)
	rateLimiter.Cleanup()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		// User routes
		api.GET("/me", authHandler.GetMe)

		// Messaging routes
		api.POST("/messages/send", middleware.RateLimitMiddleware(rateLimiter), msgHandler.SendMessage)
		api.GET("/messages/inbox", msgHandler.GetInbox)
		api.GET("/messages/sent", msgHandler.GetSent)
		api.GET("/messages/conversation/:id", msgHandler.GetConversation)
		api.POST("/messages/conversation/:id/reply", middleware.RateLimitMiddleware(rateLimiter), msgHandler.Reply)
		api.POST("/messages/mark-read", msgHandler.MarkRead)
		api.GET("/messages/notifications", msgHandler.GetNotifications)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.PUT("/messages/:id/read", adminHandler.MarkMessageRead)
			admin.PUT("/messages/:id/unread", adminHandler.MarkMessageUnread)
			admin.DELETE("/messages/:id", adminHandler.DeleteMessage)
			admin.GET("/messages/:id/audit", adminHandler.GetMessageAudit)

			admin.POST("/assignments", assignHandler.CreateAssignment)
			admin.GET("/assignments", assignHandler.ListAssignments)
			admin.PUT("/assignments/:id/activate", assignHandler.ActivateAssignment)
			admin.PUT("/assignments/:id/deactivate", assignHandler.DeactivateAssignment)
		}
	}

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Starting CareLink server on %s (env: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

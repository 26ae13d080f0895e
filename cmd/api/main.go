package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/config"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/database"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/handler"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.NewMinIOStore(ctx, cfg.MinIO)
	cancel()
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable, rate limiting disabled: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// services
	notificationSvc := service.NewNotificationService(notificationRepo)
	userSvc := service.NewUserService(userRepo, followRepo, resourceRepo, adminRepo, jwtService, store)
	resourceSvc := service.NewResourceService(resourceRepo, categoryRepo, collectionRepo, store, cfg.Upload.MaxResourceSize)
	commentSvc := service.NewCommentService(db, commentRepo, resourceRepo, userRepo, notificationSvc, store, cfg.Upload.MaxImageSize)
	followSvc := service.NewFollowService(followRepo, userRepo, notificationSvc)
	chatSvc := service.NewChatService(db, chatRepo, userRepo, store, cfg.Upload.MaxResourceSize)
	adminSvc := service.NewAdminService(db, adminRepo, userRepo, resourceRepo, commentRepo, notificationSvc)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)

	// handlers
	hub := handler.NewHub()
	userHandler := handler.NewUserHandler(userSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	followHandler := handler.NewFollowHandler(followSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	chatHandler := handler.NewChatHandler(chatSvc, hub)
	adminHandler := handler.NewAdminHandler(adminSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	healthHandler := handler.NewHealthHandler(db)

	limiter := middleware.NewRateLimiter(rdb)

	app := fiber.New(fiber.Config{
		AppName:   "edushare-api",
		BodyLimit: int(cfg.Upload.MaxResourceSize) + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	required := middleware.Required(jwtService)
	optional := middleware.Optional(jwtService)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	// auth
	api.Post("/auth/register", userHandler.Register)
	api.Post("/auth/login", limiter.Limit("login", 10, time.Minute), userHandler.Login)

	// users
	users := api.Group("/users")
	users.Get("/me", required, userHandler.Current)
	users.Put("/me", required, userHandler.UpdateProfile)
	users.Put("/me/password", required, userHandler.ChangePassword)
	users.Post("/me/avatar", required, userHandler.UpdateAvatar)
	users.Post("/me/role-request", required, userHandler.RequestRole)
	users.Get("/:id/profile", optional, userHandler.Profile)
	users.Post("/:id/follow", required, followHandler.Follow)
	users.Delete("/:id/follow", required, followHandler.Unfollow)
	users.Get("/:id/followers", followHandler.Followers)
	users.Get("/:id/following", followHandler.Following)

	// resources
	resources := api.Group("/resources")
	resources.Get("/", resourceHandler.List)
	resources.Get("/categories", resourceHandler.Categories)
	resources.Get("/mine", required, resourceHandler.Mine)
	resources.Post("/", required, resourceHandler.Create)
	resources.Get("/:id", optional, resourceHandler.Get)
	resources.Put("/:id", required, resourceHandler.Update)
	resources.Delete("/:id", required, resourceHandler.Delete)
	resources.Get("/:id/download", required, resourceHandler.Download)
	resources.Get("/:id/related", resourceHandler.Related)
	resources.Post("/:id/collect", required, resourceHandler.Collect)
	resources.Delete("/:id/collect", required, resourceHandler.Uncollect)
	resources.Get("/:id/comments", optional, commentHandler.ListByResource)

	// collections
	api.Get("/collections", required, resourceHandler.Collections)

	// comments
	comments := api.Group("/comments")
	comments.Get("/", optional, commentHandler.List)
	comments.Post("/", required, limiter.Limit("comment", 20, time.Minute), commentHandler.Create)
	comments.Get("/:id/replies", optional, commentHandler.ListReplies)
	comments.Put("/:id", required, commentHandler.Update)
	comments.Delete("/:id", required, commentHandler.Delete)

	// notifications
	notifications := api.Group("/notifications", required)
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read", notificationHandler.MarkRead)
	notifications.Get("/stream", notificationHandler.Stream)

	// chat
	chat := api.Group("/chat", required)
	chat.Post("/messages", limiter.Limit("chat", 30, time.Minute), chatHandler.Send)
	chat.Get("/conversations", chatHandler.Conversations)
	chat.Get("/conversations/:id/messages", chatHandler.Messages)
	chat.Get("/media/:id", chatHandler.Media)

	// realtime
	api.Use("/ws", hub.Upgrade(jwtService))
	api.Get("/ws", hub.Serve())

	// analytics ingest is public with optional identity
	api.Post("/analytics/events", optional, limiter.Limit("analytics", 60, time.Minute), analyticsHandler.Track)

	// admin
	admin := api.Group("/admin", required, middleware.AdminOnly())
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users/:id/status", adminHandler.SetUserStatus)
	admin.Get("/role-requests", adminHandler.ListRoleRequests)
	admin.Post("/role-requests/:id/audit", adminHandler.AuditRoleRequest)
	admin.Post("/resources/:id/audit", adminHandler.AuditResource)
	admin.Get("/operation-logs", adminHandler.ListOperationLogs)
	admin.Get("/operation-logs/export", adminHandler.ExportOperationLogs)
	admin.Get("/analytics/summary", analyticsHandler.Summary)
	admin.Get("/analytics/trend", analyticsHandler.Trend)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()
	log.Printf("listening on :%s (%s)", cfg.App.Port, cfg.App.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
}

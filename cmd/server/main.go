package main

import (
	"context"
	"log"

	"approvalflow/internal/api/handler"
	"approvalflow/internal/config"
	"approvalflow/internal/coordinator"
	"approvalflow/internal/core/postgres/repository"
	"approvalflow/internal/domain"
	infraredis "approvalflow/internal/infrastructure/redis"
	"approvalflow/internal/metrics"
	"approvalflow/internal/notifier"
	"approvalflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(
		&domain.Workflow{},
		&domain.ApprovalStep{},
		&domain.Comment{},
		&domain.WorkflowVersion{},
	); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	// 3. Set up Redis-backed queue and event bus
	redisClient, err := infraredis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal(err)
	}
	queue := infraredis.NewNotificationQueue(redisClient)
	bus := infraredis.NewEventBus(redisClient)

	// 4. Initialize repositories
	workflowRepo := repository.NewWorkflowRepository(db)
	stepRepo := repository.NewStepRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	versionRepo := repository.NewVersionRepository(db)

	// 5. Initialize service and handler
	approvalSvc := service.NewApprovalService(workflowRepo, stepRepo, commentRepo, versionRepo, bus)
	workflowHandler := handler.NewWorkflowHandler(approvalSvc)

	// 6. Start coordinator and notifier pool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord := coordinator.NewCoordinator(workflowRepo, stepRepo, queue, bus)
	go coord.Start(ctx)
	if err := coord.StartOverdueScan(ctx, cfg.OverdueScanCron); err != nil {
		log.Fatal(err)
	}

	pool := notifier.NewNotifier(queue, notifier.InitRegistry())
	pool.StartPool(ctx, cfg.NotifierConcurrency)

	// 7. Set up routes
	router := gin.Default()
	router.Use(metrics.Middleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	workflowHandler.RegisterRoutes(api)

	// 8. Start server
	log.Println("Server starting on", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

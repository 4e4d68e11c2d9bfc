package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	_ "github.com/noah-isme/egov-portal-api/api/swagger"
	"github.com/noah-isme/egov-portal-api/internal/handler"
	"github.com/noah-isme/egov-portal-api/internal/repository"
	"github.com/noah-isme/egov-portal-api/internal/router"
	"github.com/noah-isme/egov-portal-api/internal/service"
	"github.com/noah-isme/egov-portal-api/pkg/cache"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	"github.com/noah-isme/egov-portal-api/pkg/database"
	"github.com/noah-isme/egov-portal-api/pkg/logger"
	"github.com/noah-isme/egov-portal-api/pkg/mailer"
	"github.com/noah-isme/egov-portal-api/pkg/storage"
)

// @title E-Government Portal API
// @version 1.0.0
// @description Citizen services portal: service requests, payments, documents and notifications
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare document storage", "error", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Side-effect plumbing.
	metrics := service.NewMetricsService()

	var sender mailer.Sender = mailer.NoopSender{}
	if cfg.Email.Enabled {
		sender = mailer.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	}
	dispatcher := service.NewDispatcher(notificationRepo, sender, metrics, cfg.Email, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Services.
	authService := service.NewAuthService(userRepo, cfg.JWT, logr)
	userService := service.NewUserService(userRepo, logr)
	catalogService := service.NewCatalogService(serviceRepo, departmentRepo, cacheRepo, cfg.Catalog.CacheTTL, logr)
	departmentService := service.NewDepartmentService(departmentRepo, catalogService, logr)
	requestService := service.NewRequestService(requestRepo, serviceRepo, userRepo, dispatcher, logr)
	paymentService := service.NewPaymentService(paymentRepo, requestRepo, userRepo, dispatcher, metrics, cfg.Payments.SuccessRate, rand.Float64, logr)
	documentService := service.NewDocumentService(documentRepo, requestRepo, store, cfg.Documents, logr)
	notificationService := service.NewNotificationService(notificationRepo, cfg.Notifications.ReadRetention, logr)
	reportService := service.NewReportService(requestRepo, paymentRepo, userRepo, cacheRepo, cfg.Reports.DashboardCacheTTL, logr)

	// Scheduled maintenance.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Notifications.CleanupSchedule, func() {
		notificationService.PurgeRead(context.Background())
		authService.PurgeExpiredTokens(context.Background(), userRepo.PurgeExpiredRefreshTokens)
	}); err != nil {
		logr.Sugar().Fatalw("invalid cleanup schedule", "schedule", cfg.Notifications.CleanupSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Department:   handler.NewDepartmentHandler(departmentService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Request:      handler.NewRequestHandler(requestService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Document:     handler.NewDocumentHandler(documentService),
		Notification: handler.NewNotificationHandler(notificationService),
		Report:       handler.NewReportHandler(reportService),
		Metrics:      handler.NewMetricsHandler(metrics),
	}

	engine := router.New(cfg, logr, authService, metrics, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

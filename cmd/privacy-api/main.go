package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/privacy-admin-api/api/swagger"
	"github.com/noah-isme/privacy-admin-api/internal/handler"
	"github.com/noah-isme/privacy-admin-api/internal/models"
	"github.com/noah-isme/privacy-admin-api/internal/repository"
	"github.com/noah-isme/privacy-admin-api/internal/router"
	"github.com/noah-isme/privacy-admin-api/internal/service"
	"github.com/noah-isme/privacy-admin-api/pkg/cache"
	"github.com/noah-isme/privacy-admin-api/pkg/config"
	"github.com/noah-isme/privacy-admin-api/pkg/database"
	"github.com/noah-isme/privacy-admin-api/pkg/jobs"
	"github.com/noah-isme/privacy-admin-api/pkg/logger"
)

// @title Privacy Compliance Admin API
// @version 1.0.0
// @description Registers and workflows for DSARs, breaches, complaints, consent and ROPA.
// @BasePath /api/v1
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cache and publish disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	jurisdictionRepo := repository.NewJurisdictionRepository(db)
	dsarRepo := repository.NewDSARRepository(db)
	breachRepo := repository.NewBreachRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	ropaRepo := repository.NewROPARepository(db)
	officerRepo := repository.NewOfficerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	senders := []service.NotificationSender{service.NewLogSender(logr)}
	if redisClient != nil && cfg.Notifications.PublishChannel != "" {
		senders = append(senders, service.NewPublishSender(cacheRepo, cfg.Notifications.PublishChannel))
	}
	notificationSvc := service.NewNotificationService(notificationRepo, service.NotificationConfig{
		DefaultRecipient: cfg.Notifications.DefaultRecipient,
		Queue: jobs.QueueConfig{
			Workers:       cfg.Notifications.Workers,
			MaxRetries:    cfg.Notifications.MaxRetries,
			RetryDelay:    cfg.Notifications.RetryDelay,
			MaxRetryDelay: cfg.Notifications.MaxRetryDelay,
			Logger:        logr,
		},
	}, metrics, logr, senders...)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	deps := service.WorkflowDeps{
		DB:       db,
		Notifier: notificationSvc,
		Audit:    auditRepo,
		Cache:    cacheSvc,
		Metrics:  metrics,
		Logger:   logr,
	}

	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, logr)
	jurisdictionSvc := service.NewJurisdictionService(jurisdictionRepo, validate, deps)
	dsarSvc := service.NewDSARService(dsarRepo, jurisdictionSvc, officerRepo, validate, deps,
		service.WithCompletionValidators(map[models.DSARRequestType]service.DSARCompletionValidator{
			models.DSARTypeAccess:      service.RequireResponseNote(),
			models.DSARTypePortability: service.RequireResponseNote(),
		}))
	breachSvc := service.NewBreachService(breachRepo, jurisdictionSvc, validate, deps)
	complaintSvc := service.NewComplaintService(complaintRepo, jurisdictionSvc, validate, deps)
	consentSvc := service.NewConsentService(consentRepo, jurisdictionSvc, validate, deps)
	ropaSvc := service.NewROPAService(ropaRepo, validate, cfg.Compliance.ROPAReviewInterval, deps)
	officerSvc := service.NewOfficerService(officerRepo, dsarRepo, jurisdictionSvc, validate, deps)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, cfg.Cache.TTL, logr)
	deadlineSvc := service.NewDeadlineService(jurisdictionSvc)
	exportSvc := service.NewExportService(dsarSvc, breachSvc, auditRepo, logr)

	if cfg.Monitor.Enabled {
		monitor := service.NewMonitorService(dsarRepo, breachRepo, service.MonitorConfig{Schedule: cfg.Monitor.Schedule}, deps)
		if err := monitor.Start(ctx); err != nil {
			logr.Fatal("failed to start deadline monitor", zap.Error(err))
		}
		defer monitor.Stop()
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return cache.Ping(ctx, redisClient) })
	}

	engine := router.New(router.Config{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, router.Deps{
		Logger:    logr,
		Metrics:   metrics,
		Validator: authSvc,
		Audit:     auditRepo,
	}, router.Handlers{
		Health:        handler.NewHealthHandler(metrics, checks),
		Jurisdictions: handler.NewJurisdictionHandler(jurisdictionSvc),
		Deadlines:     handler.NewDeadlineHandler(deadlineSvc),
		DSARs:         handler.NewDSARHandler(dsarSvc),
		Breaches:      handler.NewBreachHandler(breachSvc),
		Complaints:    handler.NewComplaintHandler(complaintSvc),
		Consents:      handler.NewConsentHandler(consentSvc),
		ROPA:          handler.NewROPAHandler(ropaSvc),
		Officers:      handler.NewOfficerHandler(officerSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Exports:       handler.NewExportHandler(exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/controller"
	"github.com/stickerverse/sticker-catalog/internal/app/repository"
	"github.com/stickerverse/sticker-catalog/internal/app/service"
	"github.com/stickerverse/sticker-catalog/internal/catalog"
	"github.com/stickerverse/sticker-catalog/internal/db"
	"github.com/stickerverse/sticker-catalog/internal/middleware"
	"github.com/stickerverse/sticker-catalog/internal/notify"
	"github.com/stickerverse/sticker-catalog/internal/router"
	"github.com/stickerverse/sticker-catalog/internal/scheduler"
	"github.com/stickerverse/sticker-catalog/internal/storage"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
	"github.com/stickerverse/sticker-catalog/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting sticker catalog server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	def := catalog.Default()
	if issues := def.Inconsistencies(); len(issues) > 0 {
		logger.Warn("Catalog definition has inconsistencies", map[string]interface{}{
			"issues": issues,
		})
	}

	// Catalog cache is optional
	var cache service.CatalogCache
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, catalog cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			cache = redis.NewCatalogCache(redis.GetClient(), cfg.Redis.CacheTTL)
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Uploads need a bucket; stored keys still resolve through a CDN base URL
	s3Storage := storage.NewS3Storage(&cfg.S3)
	signer := service.SignerFor(&cfg.S3, s3Storage)
	if signer == nil {
		logger.Warn("S3 bucket not configured, asset uploads disabled")
	}
	var assets service.AssetResolver
	if cfg.S3.Enabled() || cfg.S3.BaseURL != "" {
		assets = s3Storage
	}
	notifier := notify.NewUploadNotifier(cfg.SMTP)

	// Initialize repositories
	store := repository.NewTaxonomyStore(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	seedService := service.NewSeedService(store, def, cache)
	cleanupService := service.NewCleanupService(store, def, cache)
	auditService := service.NewAuditService(store, def)
	catalogService := service.NewCatalogService(store, assets, cache)
	stickerService := service.NewStickerService(store, signer, notifier, assets, cache)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	catalogController := controller.NewCatalogController(catalogService)
	taxonomyController := controller.NewTaxonomyController(seedService, cleanupService, auditService)
	uploadController := controller.NewUploadController(stickerService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authController,
		catalogController,
		taxonomyController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Scheduled audit only reads
	var auditScheduler *scheduler.AuditScheduler
	if cfg.Audit.Schedule != "" {
		auditScheduler = scheduler.NewAuditScheduler(auditService, cfg.Audit.Schedule)
		if err := auditScheduler.Start(); err != nil {
			logger.Warn("Audit scheduler not started", map[string]interface{}{
				"error": err.Error(),
			})
			auditScheduler = nil
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if auditScheduler != nil {
		auditScheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

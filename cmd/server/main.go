package main

import (
	"alcyxob/trainer-app/internal/api"
	"alcyxob/trainer-app/internal/cache"
	"alcyxob/trainer-app/internal/config"
	"alcyxob/trainer-app/internal/database"
	"alcyxob/trainer-app/internal/logger"
	"alcyxob/trainer-app/internal/service"
	"alcyxob/trainer-app/internal/storage"
	"alcyxob/trainer-app/internal/web"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Trainer App API
// @version 1.0
// @description API for personal trainers managing students, training plans and payments.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	zl, err := logger.New(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)
	zl.Info("starting trainer app server", zap.String("driver", cfg.Database.Driver))

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	// --- Database ---
	backend, err := database.Open(startCtx, cfg.Database, cfg.Server.Debug)
	if err != nil {
		zl.Fatal("could not open database", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zl.Error("failed to close database", zap.Error(err))
		}
	}()
	if err := backend.Migrate(startCtx); err != nil {
		zl.Fatal("could not migrate database", zap.Error(err))
	}

	// --- Cache ---
	planCache := cache.NewNoopPlanCache()
	if cfg.Cache.Addr != "" {
		client, err := cache.NewRedisClient(startCtx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			zl.Fatal("could not connect to redis", zap.Error(err))
		}
		defer client.Close()
		planCache = cache.NewRedisPlanCache(client, cfg.Cache.TTL)
		zl.Info("public plan cache enabled", zap.String("addr", cfg.Cache.Addr))
	}

	// --- Storage ---
	fileStorage, err := storage.NewS3Storage(startCtx, cfg.S3)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		zl.Warn("object storage not configured, avatars and export uploads are disabled")
	case err != nil:
		zl.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Services ---
	repos := backend.Repos
	services := api.Services{
		Auth:      service.NewAuthService(repos.Trainers, cfg.JWT.Secret, cfg.JWT.Expiration),
		Trainer:   service.NewTrainerService(repos.Trainers, repos.Plans, planCache, fileStorage, cfg.S3.PresignExpiry),
		Student:   service.NewStudentService(repos.Students, repos.Plans, planCache),
		Plan:      service.NewPlanService(repos, planCache),
		Share:     service.NewShareService(repos, planCache, cfg.Public.BaseURL),
		Payment:   service.NewPaymentService(repos, fileStorage, cfg.S3.PresignExpiry),
		Dashboard: service.NewDashboardService(repos),
	}

	// --- Router ---
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(zl))
	tmpl, err := web.Templates()
	if err != nil {
		zl.Fatal("failed to parse templates", zap.Error(err))
	}
	router.SetHTMLTemplate(tmpl)
	api.SetupRoutes(router, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exiting")
}

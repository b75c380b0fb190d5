package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olive-green/api-scheduler/internal/admin"
	"github.com/olive-green/api-scheduler/internal/config"
	"github.com/olive-green/api-scheduler/internal/database"
	"github.com/olive-green/api-scheduler/internal/health"
	"github.com/olive-green/api-scheduler/internal/httpx"
	"github.com/olive-green/api-scheduler/internal/logger"
	"github.com/olive-green/api-scheduler/internal/registry"
	"github.com/olive-green/api-scheduler/internal/scheduler"
	"github.com/olive-green/api-scheduler/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel)
	log.Infow("starting api-scheduler", "env", cfg.AppEnv)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	st := store.New(db)
	executor := httpx.New(cfg.ConnectTimeout, cfg.DefaultTimeout)
	reg := registry.New(cfg.MisfireGrace, cfg.MaxConcurrentJobs, log)
	svc := scheduler.New(st, executor, reg, log)

	svc.Start()
	if err := svc.Rehydrate(context.Background()); err != nil {
		log.Errorw("rehydration failed", "error", err)
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	adminHandler := admin.NewHandler(st, svc, log)
	healthHandler := health.NewHandler(db, reg, log)
	admin.SetupRoutes(router, adminHandler, healthHandler, cfg)

	httpServer := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start admin server", "error", err)
		}
	}()
	log.Infow("admin server started", "addr", httpServer.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorw("admin server forced shutdown", "error", err)
	}
	if err := svc.Shutdown(ctx); err != nil {
		log.Errorw("scheduler shutdown did not complete cleanly", "error", err)
	}

	log.Info("shutdown complete")
}

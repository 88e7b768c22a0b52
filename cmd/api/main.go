package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/analytics"
	"github.com/fleetkeep/maintguard/internal/api"
	"github.com/fleetkeep/maintguard/internal/api/handlers"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/metrics"
	"github.com/fleetkeep/maintguard/internal/queue"
	"github.com/fleetkeep/maintguard/internal/storage/redis"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// Database
	conn, err := db.NewConnection(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := db.NewRepository(conn)

	// Redis
	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	scanQueue := queue.NewRedisQueue(cache.Client)

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	lifecycle := alerts.NewManager(repo, logger, collector, cfg.Scanner.DismissCooldown, cfg.Scanner.AutoCloseAfter)
	calculator := analytics.NewCalculator(repo, logger)

	handler := handlers.NewHandler(repo, lifecycle, calculator, cache, scanQueue, cfg, logger)
	server := api.NewServer(cfg, repo, handler, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

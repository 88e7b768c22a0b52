package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/metrics"
	"github.com/fleetkeep/maintguard/internal/queue"
	"github.com/fleetkeep/maintguard/internal/scanner"
	"github.com/fleetkeep/maintguard/internal/storage/redis"
	"github.com/fleetkeep/maintguard/internal/usage"
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

	conn, err := db.NewConnection(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	repo := db.NewRepository(conn)

	cache := redis.NewClient(cfg.Redis.URL)
	defer cache.Close()

	scanQueue := queue.NewRedisQueue(cache.Client)

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	lifecycle := alerts.NewManager(repo, logger, collector, cfg.Scanner.DismissCooldown, cfg.Scanner.AutoCloseAfter)
	resolver := usage.NewResolver(repo, logger)
	scan := scanner.NewScanner(repo, resolver, lifecycle, collector, logger, cfg.Scanner)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		logger.Info("Scan worker started")
		for {
			job, err := scanQueue.Pop(ctx, 5*time.Second)
			if err != nil {
				if errors.Is(err, queue.ErrTimeout) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				logger.Error("Failed to pop scan job", zap.Error(err))
				continue
			}

			logger.Info("Processing scan job",
				zap.String("job_id", job.ID),
				zap.String("tenant_id", job.TenantID),
				zap.String("trigger", job.Trigger),
			)

			if _, err := scan.Run(ctx, job.TenantID); err != nil {
				if errors.Is(err, scanner.ErrFeatureDisabled) {
					logger.Warn("Skipping scan for unentitled tenant",
						zap.String("tenant_id", job.TenantID),
					)
					continue
				}
				logger.Error("Scan failed",
					zap.String("tenant_id", job.TenantID),
					zap.Error(err),
				)
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker stopped")
}

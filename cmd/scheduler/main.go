package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/queue"
	"github.com/fleetkeep/maintguard/internal/storage/redis"
	"github.com/google/uuid"
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

	ctx, cancel := context.WithCancel(context.Background())

	ticker := time.NewTicker(cfg.Scanner.ScanInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scheduleScans(ctx, repo, scanQueue, logger)
			}
		}
	}()

	logger.Info("Scheduler started", zap.Duration("scan_interval", cfg.Scanner.ScanInterval))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	cancel()
	logger.Info("Scheduler stopped")
}

// scheduleScans enqueues one scan job per entitled tenant. Tenants without
// the feature flag never get a job; the worker re-checks the flag anyway in
// case entitlement changed while the job sat in the queue.
func scheduleScans(ctx context.Context, repo *db.Repository, scanQueue *queue.RedisQueue, logger *zap.Logger) {
	tenants, err := repo.GetTenantsWithFeature(db.FeaturePredictiveMaintenance)
	if err != nil {
		logger.Error("Failed to get entitled tenants", zap.Error(err))
		return
	}

	for _, tenantID := range tenants {
		job := &queue.ScanJob{
			ID:        uuid.New().String(),
			TenantID:  tenantID,
			Trigger:   queue.TriggerScheduled,
			CreatedAt: time.Now(),
		}

		if err := scanQueue.Push(ctx, job); err != nil {
			logger.Error("Failed to queue scan job",
				zap.String("tenant_id", tenantID),
				zap.Error(err),
			)
		}
	}

	logger.Info("Scheduled tenant scans", zap.Int("tenants", len(tenants)))
}

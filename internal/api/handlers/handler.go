package handlers

import (
	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/analytics"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/queue"
	"github.com/fleetkeep/maintguard/internal/storage/redis"
	"go.uber.org/zap"
)

type Handler struct {
	repo      *db.Repository
	lifecycle *alerts.Manager
	analytics *analytics.Calculator
	cache     *redis.Client
	queue     *queue.RedisQueue
	config    *config.Config
	logger    *zap.Logger
}

func NewHandler(repo *db.Repository, lifecycle *alerts.Manager, analytics *analytics.Calculator, cache *redis.Client, scanQueue *queue.RedisQueue, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		lifecycle: lifecycle,
		analytics: analytics,
		cache:     cache,
		queue:     scanQueue,
		config:    cfg,
		logger:    logger,
	}
}

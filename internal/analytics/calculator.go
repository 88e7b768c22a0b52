// Package analytics aggregates persisted alert history into the tenant
// summary served by the API.
package analytics

import (
	"fmt"
	"time"

	"github.com/fleetkeep/maintguard/internal/db"
	"go.uber.org/zap"
)

const topComponentsLimit = 5

// Store is the aggregate query surface, satisfied by *db.Repository.
type Store interface {
	GetSeverityCounts(tenantID string, start, end *time.Time) (*db.SeverityCounts, error)
	GetResolutionStats(tenantID string, start, end *time.Time) (*db.ResolutionStats, error)
	GetTopComponentsByAlerts(tenantID string, start, end *time.Time, limit int) ([]db.ComponentAlertCount, error)
	GetCountsByCriticality(tenantID string, start, end *time.Time) (map[db.Criticality]int, error)
}

type Calculator struct {
	store  Store
	logger *zap.Logger
}

func NewCalculator(store Store, logger *zap.Logger) *Calculator {
	return &Calculator{store: store, logger: logger}
}

// Summary builds the analytics report for a tenant over an optional date
// window. Effectiveness is the share of closed alerts that resolved on their
// own rather than being dismissed as noise; it is nil until at least one
// alert has closed either way.
func (c *Calculator) Summary(tenantID string, start, end *time.Time) (*db.AnalyticsSummary, error) {
	counts, err := c.store.GetSeverityCounts(tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get severity counts: %w", err)
	}

	resolution, err := c.store.GetResolutionStats(tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution stats: %w", err)
	}

	var effectiveness *float64
	if closed := resolution.Resolved + resolution.Dismissed; closed > 0 {
		ratio := float64(resolution.Resolved) / float64(closed)
		effectiveness = &ratio
	}

	topComponents, err := c.store.GetTopComponentsByAlerts(tenantID, start, end, topComponentsLimit)
	if err != nil {
		c.logger.Error("Failed to get top components", zap.Error(err))
		topComponents = []db.ComponentAlertCount{}
	}

	byCriticality, err := c.store.GetCountsByCriticality(tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get counts by criticality: %w", err)
	}

	return &db.AnalyticsSummary{
		TotalAlerts:            counts.Total,
		Critical:               counts.Critical,
		Warnings:               counts.Warning,
		Info:                   counts.Info,
		AverageResolutionHours: resolution.AvgResolutionHours,
		Effectiveness:          effectiveness,
		TopComponents:          topComponents,
		ByCriticality:          byCriticality,
	}, nil
}

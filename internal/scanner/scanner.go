// Package scanner runs the per-tenant evaluation pass: it enumerates
// monitored components, derives usage, projection, and stock signals for
// each, and reconciles the verdicts against persisted alert state.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/metrics"
	"github.com/fleetkeep/maintguard/internal/projection"
	"github.com/fleetkeep/maintguard/internal/stock"
	"github.com/fleetkeep/maintguard/internal/usage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrFeatureDisabled marks a tenant that is not entitled to predictive
// maintenance. Distinct from an empty scan.
var ErrFeatureDisabled = errors.New("predictive maintenance is not enabled for this tenant")

// Store is the read surface a scan needs, satisfied by *db.Repository.
type Store interface {
	IsFeatureEnabled(tenantID, feature string) (bool, error)
	GetMonitoredComponents(tenantID string) ([]*db.MonitoredComponent, error)
	GetInventoryItem(id, tenantID string) (*db.InventoryItem, error)
	GetActiveAlertSummary(tenantID string) (*db.AlertListSummary, error)
}

type ComponentFailure struct {
	ComponentID string `json:"component_id"`
	Name        string `json:"name"`
	Error       string `json:"error"`
}

// Summary reports what one tenant pass did. Failures list the components
// skipped over; a bad component never aborts the rest of the pass.
type Summary struct {
	TenantID   string             `json:"tenant_id"`
	Evaluated  int                `json:"evaluated"`
	Raised     int                `json:"raised"`
	Refreshed  int                `json:"refreshed"`
	Resolved   int                `json:"resolved"`
	Suppressed int                `json:"suppressed"`
	AutoClosed int64              `json:"auto_closed"`
	Failures   []ComponentFailure `json:"failures,omitempty"`
	Duration   time.Duration      `json:"duration"`
}

type Scanner struct {
	store       Store
	usage       *usage.Resolver
	lifecycle   *alerts.Manager
	metrics     *metrics.Collector
	logger      *zap.Logger
	workerCount int
	limiter     *rate.Limiter
}

func NewScanner(store Store, resolver *usage.Resolver, lifecycle *alerts.Manager, collector *metrics.Collector, logger *zap.Logger, cfg config.ScannerConfig) *Scanner {
	workerCount := cfg.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	limit := rate.Limit(cfg.ComponentRateLimit)
	if limit <= 0 {
		limit = rate.Inf
	}
	return &Scanner{
		store:       store,
		usage:       resolver,
		lifecycle:   lifecycle,
		metrics:     collector,
		logger:      logger,
		workerCount: workerCount,
		limiter:     rate.NewLimiter(limit, workerCount),
	}
}

// Run executes one evaluation pass for a tenant. Components are evaluated
// concurrently; every write is an idempotent upsert keyed on the component's
// single ACTIVE alert, so an interrupted or repeated pass cannot corrupt
// state or create duplicates.
func (s *Scanner) Run(ctx context.Context, tenantID string) (*Summary, error) {
	enabled, err := s.store.IsFeatureEnabled(tenantID, db.FeaturePredictiveMaintenance)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrFeatureDisabled
	}

	start := time.Now()
	components, err := s.store.GetMonitoredComponents(tenantID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TenantID: tenantID}
	var mu sync.Mutex
	jobs := make(chan *db.MonitoredComponent)

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for component := range jobs {
				if err := s.limiter.Wait(ctx); err != nil {
					return
				}
				outcome, err := s.evaluateComponent(tenantID, component)

				mu.Lock()
				summary.Evaluated++
				if err != nil {
					summary.Failures = append(summary.Failures, ComponentFailure{
						ComponentID: component.ID,
						Name:        component.Name,
						Error:       err.Error(),
					})
					mu.Unlock()
					s.logger.Warn("Component evaluation failed, continuing scan",
						zap.String("tenant_id", tenantID),
						zap.String("component_id", component.ID),
						zap.Error(err),
					)
					continue
				}
				switch outcome {
				case alerts.OutcomeRaised:
					summary.Raised++
				case alerts.OutcomeRefreshed:
					summary.Refreshed++
				case alerts.OutcomeResolved:
					summary.Resolved++
				case alerts.OutcomeSuppressed:
					summary.Suppressed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, component := range components {
		select {
		case <-ctx.Done():
			// Abandon queueing; already-submitted evaluations finish on
			// their own and the next cycle picks up the rest.
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		case jobs <- component:
		}
	}
	close(jobs)
	wg.Wait()

	closed, err := s.lifecycle.CloseStale(tenantID)
	if err != nil {
		s.logger.Error("Failed to auto-close stale alerts", zap.Error(err))
	}
	summary.AutoClosed = closed
	summary.Duration = time.Since(start)

	s.metrics.RecordScan(tenantID, summary.Duration, summary.Evaluated, len(summary.Failures))
	if active, err := s.store.GetActiveAlertSummary(tenantID); err == nil {
		s.metrics.SetActiveAlerts(tenantID, active)
	}

	s.logger.Info("Scan pass completed",
		zap.String("tenant_id", tenantID),
		zap.Int("evaluated", summary.Evaluated),
		zap.Int("raised", summary.Raised),
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("resolved", summary.Resolved),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int64("auto_closed", summary.AutoClosed),
		zap.Int("failures", len(summary.Failures)),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

func (s *Scanner) evaluateComponent(tenantID string, component *db.MonitoredComponent) (alerts.Outcome, error) {
	hours, drivingAssetID, err := s.usage.ComponentOperatingHours(component.ID)
	if err != nil {
		return alerts.OutcomeUnchanged, err
	}

	eval := &alerts.Evaluation{
		Component:            component,
		DrivingAssetID:       drivingAssetID,
		DaysUntilMaintenance: projection.DaysUntilMaintenance(component.MTBFHours, hours, projection.DefaultDailyUsageHours),
	}

	if component.InventoryItemID != nil {
		item, err := s.store.GetInventoryItem(*component.InventoryItemID, tenantID)
		if err != nil {
			return alerts.OutcomeUnchanged, err
		}
		eval.HasStock = true
		eval.CurrentStock = item.CurrentStock
		eval.LeadTimeDays = item.LeadTimeDays
		eval.Requirement = stock.Calculate(component.Criticality, component.MTBFHours, item.LeadTimeDays)
		eval.StockStatus = stock.Classify(item.CurrentStock, eval.Requirement.MinimumStock)
	}

	verdict := alerts.Evaluate(eval)
	return s.lifecycle.Reconcile(tenantID, eval, verdict)
}

package alerts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinDismissReasonLength is the shortest accepted dismissal reason. Dismissed
// alerts suppress re-triggering, so the reason has to say something.
const MinDismissReasonLength = 10

var (
	ErrReasonTooShort = fmt.Errorf("dismiss reason must be at least %d characters", MinDismissReasonLength)
)

// Store is the persistence surface the lifecycle manager needs. Satisfied by
// *db.Repository.
type Store interface {
	GetActiveAlert(componentID, tenantID string) (*db.MaintenanceAlert, error)
	CreateAlert(a *db.MaintenanceAlert) error
	UpdateAlertMetrics(a *db.MaintenanceAlert) error
	ResolveAlert(id string, resolvedAt time.Time) error
	GetAlert(id, tenantID string) (*db.MaintenanceAlert, error)
	DismissAlert(id, tenantID, reason string, dismissedAt time.Time) error
	GetLastDismissedAlert(componentID, tenantID string) (*db.MaintenanceAlert, error)
	AutoCloseStale(tenantID string, cutoff, now time.Time) (int64, error)
}

// Outcome describes what a reconciliation pass did for one component.
type Outcome string

const (
	OutcomeRaised     Outcome = "raised"
	OutcomeRefreshed  Outcome = "refreshed"
	OutcomeResolved   Outcome = "resolved"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeUnchanged  Outcome = "unchanged"
)

// Manager upholds the alert state machine: at most one ACTIVE alert per
// component, automatic resolution when the trigger clears, user dismissal
// with a mandatory reason, and TTL-based auto-close of stale alerts.
type Manager struct {
	store           Store
	logger          *zap.Logger
	metrics         *metrics.Collector
	dismissCooldown time.Duration
	autoCloseAfter  time.Duration
	now             func() time.Time
}

func NewManager(store Store, logger *zap.Logger, collector *metrics.Collector, dismissCooldown, autoCloseAfter time.Duration) *Manager {
	return &Manager{
		store:           store,
		logger:          logger,
		metrics:         collector,
		dismissCooldown: dismissCooldown,
		autoCloseAfter:  autoCloseAfter,
		now:             time.Now,
	}
}

// Reconcile folds an evaluation verdict into persisted alert state. The
// operation is an idempotent upsert keyed on the component's single ACTIVE
// row: repeated or concurrent passes with the same inputs converge on one
// alert, never duplicates.
func (m *Manager) Reconcile(tenantID string, e *Evaluation, v *Verdict) (Outcome, error) {
	active, err := m.store.GetActiveAlert(e.Component.ID, tenantID)
	if err != nil && !errors.Is(err, db.ErrNoActiveAlert) {
		return OutcomeUnchanged, fmt.Errorf("failed to get active alert: %w", err)
	}

	if !v.Triggered {
		if active == nil {
			return OutcomeUnchanged, nil
		}
		now := m.now()
		if err := m.store.ResolveAlert(active.ID, now); err != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to resolve alert: %w", err)
		}
		m.metrics.RecordAlertResolved(tenantID, now.Sub(active.CreatedAt))
		m.logger.Info("Resolved alert",
			zap.String("alert_id", active.ID),
			zap.String("component_id", e.Component.ID),
		)
		return OutcomeResolved, nil
	}

	if active != nil {
		return m.refresh(active, e, v)
	}

	if m.suppressedByDismissal(tenantID, e.Component.ID, v) {
		return OutcomeSuppressed, nil
	}

	return m.raise(tenantID, e, v)
}

func (m *Manager) raise(tenantID string, e *Evaluation, v *Verdict) (Outcome, error) {
	now := m.now()
	alert := &db.MaintenanceAlert{
		ID:                   uuid.New().String(),
		TenantID:             tenantID,
		ComponentID:          e.Component.ID,
		AssetID:              e.DrivingAssetID,
		Severity:             v.Severity,
		Status:               db.AlertStatusActive,
		CurrentStock:         e.CurrentStock,
		MinimumStock:         e.Requirement.MinimumStock,
		DaysUntilMaintenance: e.DaysUntilMaintenance,
		LeadTimeDays:         e.LeadTimeDays,
		Criticality:          v.Criticality,
		Message:              v.Message,
		Recommendation:       v.Recommendation,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := m.store.CreateAlert(alert)
	if errors.Is(err, db.ErrDuplicateActive) {
		// A concurrent pass created the row between our lookup and insert.
		// Fall back to refreshing the winner.
		existing, getErr := m.store.GetActiveAlert(e.Component.ID, tenantID)
		if getErr != nil {
			return OutcomeUnchanged, fmt.Errorf("failed to load concurrently created alert: %w", getErr)
		}
		return m.refresh(existing, e, v)
	}
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to create alert: %w", err)
	}

	m.metrics.RecordAlertCreated(tenantID, v.Severity, v.Criticality)
	m.logger.Info("Raised alert",
		zap.String("alert_id", alert.ID),
		zap.String("component_id", e.Component.ID),
		zap.String("severity", string(v.Severity)),
	)
	return OutcomeRaised, nil
}

func (m *Manager) refresh(active *db.MaintenanceAlert, e *Evaluation, v *Verdict) (Outcome, error) {
	active.Severity = v.Severity
	active.CurrentStock = e.CurrentStock
	active.MinimumStock = e.Requirement.MinimumStock
	active.DaysUntilMaintenance = e.DaysUntilMaintenance
	active.LeadTimeDays = e.LeadTimeDays
	active.Message = v.Message
	active.Recommendation = v.Recommendation
	active.UpdatedAt = m.now()

	if err := m.store.UpdateAlertMetrics(active); err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to refresh alert: %w", err)
	}
	return OutcomeRefreshed, nil
}

// suppressedByDismissal prevents alert flapping: a freshly dismissed
// condition is not re-raised inside the cool-down window unless the new
// verdict is strictly more severe than the one the operator dismissed.
func (m *Manager) suppressedByDismissal(tenantID, componentID string, v *Verdict) bool {
	dismissed, err := m.store.GetLastDismissedAlert(componentID, tenantID)
	if err != nil || dismissed == nil || dismissed.DismissedAt == nil {
		return false
	}
	if m.now().Sub(*dismissed.DismissedAt) > m.dismissCooldown {
		return false
	}
	if v.Severity.Escalates(dismissed.Severity) {
		return false
	}
	m.logger.Debug("Suppressed re-trigger inside dismissal cool-down",
		zap.String("component_id", componentID),
		zap.String("dismissed_alert_id", dismissed.ID),
	)
	return true
}

// Dismiss transitions an ACTIVE alert to DISMISSED on explicit user action.
// The reason is mandatory and validated before any state changes.
func (m *Manager) Dismiss(alertID, tenantID, reason string) (*db.MaintenanceAlert, error) {
	if len(strings.TrimSpace(reason)) < MinDismissReasonLength {
		return nil, ErrReasonTooShort
	}

	alert, err := m.store.GetAlert(alertID, tenantID)
	if err != nil {
		return nil, err
	}
	if alert.Terminal() {
		return nil, db.ErrAlertNotMutable
	}

	if err := m.store.DismissAlert(alertID, tenantID, reason, m.now()); err != nil {
		return nil, err
	}

	m.metrics.RecordAlertDismissed(tenantID)
	m.logger.Info("Dismissed alert",
		zap.String("alert_id", alertID),
		zap.String("component_id", alert.ComponentID),
	)

	return m.store.GetAlert(alertID, tenantID)
}

// CloseStale auto-closes ACTIVE alerts that nobody has touched within the
// staleness window. AUTO_CLOSED is terminal and distinct from resolution.
func (m *Manager) CloseStale(tenantID string) (int64, error) {
	now := m.now()
	closed, err := m.store.AutoCloseStale(tenantID, now.Add(-m.autoCloseAfter), now)
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		m.metrics.RecordAlertsAutoClosed(tenantID, closed)
		m.logger.Info("Auto-closed stale alerts",
			zap.String("tenant_id", tenantID),
			zap.Int64("count", closed),
		)
	}
	return closed, nil
}

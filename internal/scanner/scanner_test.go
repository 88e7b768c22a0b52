package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/config"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/metrics"
	"github.com/fleetkeep/maintguard/internal/usage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend backs the scanner, the lifecycle manager, and the usage
// resolver in one place. Guarded by a mutex because scan workers hit it
// concurrently.
type fakeBackend struct {
	mu         sync.Mutex
	enabled    bool
	components []*db.MonitoredComponent
	inventory  map[string]*db.InventoryItem
	assets     map[string][]*db.Asset
	assetErrs  map[string]error
	alerts     map[string]*db.MaintenanceAlert
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		enabled:   true,
		inventory: map[string]*db.InventoryItem{},
		assets:    map[string][]*db.Asset{},
		assetErrs: map[string]error{},
		alerts:    map[string]*db.MaintenanceAlert{},
	}
}

func (f *fakeBackend) IsFeatureEnabled(tenantID, feature string) (bool, error) {
	return f.enabled, nil
}

func (f *fakeBackend) GetMonitoredComponents(tenantID string) ([]*db.MonitoredComponent, error) {
	return f.components, nil
}

func (f *fakeBackend) GetInventoryItem(id, tenantID string) (*db.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.inventory[id]
	if !ok {
		return nil, errors.New("inventory item not found")
	}
	return item, nil
}

func (f *fakeBackend) GetLinkedAssets(componentID string) ([]*db.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.assetErrs[componentID]; err != nil {
		return nil, err
	}
	return f.assets[componentID], nil
}

func (f *fakeBackend) GetActiveAlertSummary(tenantID string) (*db.AlertListSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary := &db.AlertListSummary{}
	for _, a := range f.alerts {
		if a.Status != db.AlertStatusActive {
			continue
		}
		summary.Active++
		switch a.Severity {
		case db.SeverityCritical:
			summary.Critical++
		case db.SeverityWarning:
			summary.Warning++
		case db.SeverityInfo:
			summary.Info++
		}
	}
	return summary, nil
}

func (f *fakeBackend) GetActiveAlert(componentID, tenantID string) (*db.MaintenanceAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ComponentID == componentID && a.Status == db.AlertStatusActive {
			clone := *a
			return &clone, nil
		}
	}
	return nil, db.ErrNoActiveAlert
}

func (f *fakeBackend) CreateAlert(a *db.MaintenanceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.alerts {
		if existing.ComponentID == a.ComponentID && existing.Status == db.AlertStatusActive {
			return db.ErrDuplicateActive
		}
	}
	clone := *a
	f.alerts[a.ID] = &clone
	return nil
}

func (f *fakeBackend) UpdateAlertMetrics(a *db.MaintenanceAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.alerts[a.ID]
	if !ok || existing.Status != db.AlertStatusActive {
		return db.ErrAlertNotMutable
	}
	clone := *a
	f.alerts[a.ID] = &clone
	return nil
}

func (f *fakeBackend) ResolveAlert(id string, resolvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.Status != db.AlertStatusActive {
		return db.ErrAlertNotMutable
	}
	a.Status = db.AlertStatusResolved
	a.ResolvedAt = &resolvedAt
	return nil
}

func (f *fakeBackend) GetAlert(id, tenantID string) (*db.MaintenanceAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok {
		return nil, db.ErrAlertNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeBackend) DismissAlert(id, tenantID, reason string, dismissedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok || a.Status != db.AlertStatusActive {
		return db.ErrAlertNotMutable
	}
	a.Status = db.AlertStatusDismissed
	a.DismissReason = &reason
	a.DismissedAt = &dismissedAt
	return nil
}

func (f *fakeBackend) GetLastDismissedAlert(componentID, tenantID string) (*db.MaintenanceAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ComponentID == componentID && a.Status == db.AlertStatusDismissed {
			clone := *a
			return &clone, nil
		}
	}
	return nil, db.ErrAlertNotFound
}

func (f *fakeBackend) AutoCloseStale(tenantID string, cutoff, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var closed int64
	for _, a := range f.alerts {
		if a.Status == db.AlertStatusActive && a.UpdatedAt.Before(cutoff) {
			a.Status = db.AlertStatusAutoClosed
			a.AutoClosedAt = &now
			closed++
		}
	}
	return closed, nil
}

func (f *fakeBackend) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.alerts {
		if a.Status == db.AlertStatusActive {
			count++
		}
	}
	return count
}

func criticalityPtr(c db.Criticality) *db.Criticality { return &c }
func floatPtr(f float64) *float64                     { return &f }
func stringPtr(s string) *string                      { return &s }

func newTestScanner(backend *fakeBackend) *Scanner {
	logger := zap.NewNop()
	collector := metrics.NewCollector(prometheus.NewRegistry())
	lifecycle := alerts.NewManager(backend, logger, collector, 24*time.Hour, 30*24*time.Hour)
	resolver := usage.NewResolver(backend, logger)
	cfg := config.ScannerConfig{WorkerCount: 4}
	return NewScanner(backend, resolver, lifecycle, collector, logger, cfg)
}

func TestRun_FeatureDisabled(t *testing.T) {
	backend := newFakeBackend()
	backend.enabled = false

	s := newTestScanner(backend)
	_, err := s.Run(context.Background(), "tenant-1")
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestRun_MixedOutcomes(t *testing.T) {
	backend := newFakeBackend()
	backend.components = []*db.MonitoredComponent{
		{ID: "out-of-stock", TenantID: "tenant-1", Name: "Drive belt",
			Criticality: criticalityPtr(db.CriticalityA), MTBFHours: floatPtr(360),
			InventoryItemID: stringPtr("inv-empty")},
		{ID: "healthy", TenantID: "tenant-1", Name: "Air filter",
			Criticality: criticalityPtr(db.CriticalityC), MTBFHours: floatPtr(50000),
			InventoryItemID: stringPtr("inv-full")},
		{ID: "broken", TenantID: "tenant-1", Name: "Sensor",
			Criticality: criticalityPtr(db.CriticalityB), MTBFHours: floatPtr(360)},
	}
	backend.inventory["inv-empty"] = &db.InventoryItem{ID: "inv-empty", CurrentStock: 0, LeadTimeDays: 14}
	backend.inventory["inv-full"] = &db.InventoryItem{ID: "inv-full", CurrentStock: 50, LeadTimeDays: 14}
	backend.assetErrs["broken"] = errors.New("link table unavailable")

	s := newTestScanner(backend)
	summary, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Evaluated)
	assert.Equal(t, 1, summary.Raised)
	assert.Equal(t, 0, summary.Resolved)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "broken", summary.Failures[0].ComponentID)
	assert.Equal(t, 1, backend.activeCount())
}

func TestRun_RepeatedPassesAreIdempotent(t *testing.T) {
	backend := newFakeBackend()
	backend.components = []*db.MonitoredComponent{
		{ID: "out-of-stock", TenantID: "tenant-1", Name: "Drive belt",
			Criticality: criticalityPtr(db.CriticalityA), MTBFHours: floatPtr(360),
			InventoryItemID: stringPtr("inv-empty")},
	}
	backend.inventory["inv-empty"] = &db.InventoryItem{ID: "inv-empty", CurrentStock: 0, LeadTimeDays: 14}

	s := newTestScanner(backend)

	first, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Raised)

	second, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Raised)
	assert.Equal(t, 1, second.Refreshed)

	assert.Equal(t, 1, backend.activeCount())
}

func TestRun_ResolvesWhenConditionClears(t *testing.T) {
	backend := newFakeBackend()
	backend.components = []*db.MonitoredComponent{
		{ID: "comp-1", TenantID: "tenant-1", Name: "Drive belt",
			Criticality: criticalityPtr(db.CriticalityA), MTBFHours: floatPtr(50000),
			InventoryItemID: stringPtr("inv-1")},
	}
	backend.inventory["inv-1"] = &db.InventoryItem{ID: "inv-1", CurrentStock: 0, LeadTimeDays: 14}

	s := newTestScanner(backend)
	first, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Equal(t, 1, first.Raised)

	// Replacement stock arrives.
	backend.mu.Lock()
	backend.inventory["inv-1"].CurrentStock = 50
	backend.mu.Unlock()

	second, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Resolved)
	assert.Equal(t, 0, backend.activeCount())
}

func TestRun_AutoClosesStaleAlerts(t *testing.T) {
	backend := newFakeBackend()
	stale := &db.MaintenanceAlert{
		ID:          "stale-1",
		TenantID:    "tenant-1",
		ComponentID: "forgotten",
		Severity:    db.SeverityWarning,
		Status:      db.AlertStatusActive,
		Criticality: db.CriticalityB,
		CreatedAt:   time.Now().Add(-60 * 24 * time.Hour),
		UpdatedAt:   time.Now().Add(-45 * 24 * time.Hour),
	}
	backend.alerts[stale.ID] = stale

	s := newTestScanner(backend)
	summary, err := s.Run(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.AutoClosed)
	assert.Equal(t, db.AlertStatusAutoClosed, backend.alerts["stale-1"].Status)
}

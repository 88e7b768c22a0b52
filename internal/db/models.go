package db

import (
	"time"
)

type Criticality string

const (
	CriticalityA Criticality = "A"
	CriticalityB Criticality = "B"
	CriticalityC Criticality = "C"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// severityRank orders severities for escalation comparisons.
var severityRank = map[Severity]int{
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityCritical: 3,
}

// Escalates reports whether s is strictly more severe than other.
func (s Severity) Escalates(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

type AlertStatus string

const (
	AlertStatusActive     AlertStatus = "ACTIVE"
	AlertStatusResolved   AlertStatus = "RESOLVED"
	AlertStatusDismissed  AlertStatus = "DISMISSED"
	AlertStatusAutoClosed AlertStatus = "AUTO_CLOSED"
)

type StockStatus string

const (
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockCritical   StockStatus = "CRITICAL"
	StockLow        StockStatus = "LOW"
	StockHealthy    StockStatus = "HEALTHY"
)

// MonitoredComponent is a catalog part tracked by the engine. The catalog
// subsystem owns these rows; the engine only reads them.
type MonitoredComponent struct {
	ID                   string       `json:"id" db:"id"`
	TenantID             string       `json:"-" db:"tenant_id"`
	Name                 string       `json:"name" db:"name"`
	Criticality          *Criticality `json:"criticality,omitempty" db:"criticality"`
	MTBFHours            *float64     `json:"mtbf_hours,omitempty" db:"mtbf_hours"`
	MTTRHours            *float64     `json:"mttr_hours,omitempty" db:"mttr_hours"`
	LifeExpectancyHours  *float64     `json:"life_expectancy_hours,omitempty" db:"life_expectancy_hours"`
	InventoryItemID      *string      `json:"inventory_item_id,omitempty" db:"inventory_item_id"`
	Monitored            bool         `json:"monitored" db:"monitored"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
}

type Asset struct {
	ID                   string     `json:"id" db:"id"`
	TenantID             string     `json:"-" db:"tenant_id"`
	Name                 string     `json:"name" db:"name"`
	ManualOperatingHours *float64   `json:"manual_operating_hours,omitempty" db:"manual_operating_hours"`
	PurchaseDate         *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`
	RegistrationDate     time.Time  `json:"registration_date" db:"registration_date"`
	Active               bool       `json:"active" db:"active"`
}

type InventoryItem struct {
	ID           string `json:"id" db:"id"`
	TenantID     string `json:"-" db:"tenant_id"`
	Name         string `json:"name" db:"name"`
	CurrentStock int    `json:"current_stock" db:"current_stock"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// MaintenanceAlert is the persisted unit of engine state. At most one row per
// (tenant_id, component_id) may be ACTIVE at any time; the partial unique
// index in the schema enforces this under concurrent scans.
type MaintenanceAlert struct {
	ID                   string       `json:"id" db:"id"`
	TenantID             string       `json:"-" db:"tenant_id"`
	ComponentID          string       `json:"component_id" db:"component_id"`
	AssetID              *string      `json:"asset_id,omitempty" db:"asset_id"`
	Severity             Severity     `json:"severity" db:"severity"`
	Status               AlertStatus  `json:"status" db:"status"`
	CurrentStock         int          `json:"current_stock" db:"current_stock"`
	MinimumStock         int          `json:"minimum_stock" db:"minimum_stock"`
	DaysUntilMaintenance *int         `json:"days_until_maintenance,omitempty" db:"days_until_maintenance"`
	LeadTimeDays         int          `json:"lead_time_days" db:"lead_time_days"`
	Criticality          Criticality  `json:"criticality" db:"criticality"`
	Message              string       `json:"message" db:"message"`
	Recommendation       string       `json:"recommendation" db:"recommendation"`
	DismissReason        *string      `json:"dismiss_reason,omitempty" db:"dismiss_reason"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
	ResolvedAt           *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
	DismissedAt          *time.Time   `json:"dismissed_at,omitempty" db:"dismissed_at"`
	AutoClosedAt         *time.Time   `json:"auto_closed_at,omitempty" db:"auto_closed_at"`
}

// Terminal reports whether the alert has left the ACTIVE state. Terminal
// alerts are read-only.
func (a *MaintenanceAlert) Terminal() bool {
	return a.Status != AlertStatusActive
}

type AlertFilters struct {
	TenantID    string
	Status      string
	Severities  []string
	Criticality string
	ComponentID string
	AssetID     string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// AlertListSummary is the active-alert severity breakdown returned alongside
// paginated listings.
type AlertListSummary struct {
	Active   int `json:"active" db:"active"`
	Critical int `json:"critical" db:"critical"`
	Warning  int `json:"warning" db:"warning"`
	Info     int `json:"info" db:"info"`
}

type ComponentAlertCount struct {
	ComponentID   string `json:"component_id" db:"component_id"`
	ComponentName string `json:"component_name" db:"component_name"`
	AlertCount    int    `json:"alert_count" db:"alert_count"`
}

// AnalyticsSummary aggregates persisted alert history for a tenant.
type AnalyticsSummary struct {
	TotalAlerts             int                   `json:"total_alerts"`
	Critical                int                   `json:"critical"`
	Warnings                int                   `json:"warnings"`
	Info                    int                   `json:"info"`
	AverageResolutionHours  *float64              `json:"average_resolution_hours"`
	Effectiveness           *float64              `json:"effectiveness"`
	TopComponents           []ComponentAlertCount `json:"top_components"`
	ByCriticality           map[Criticality]int   `json:"by_criticality"`
}

const FeaturePredictiveMaintenance = "PREDICTIVE_MAINTENANCE"

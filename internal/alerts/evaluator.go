// Package alerts decides when a monitored component warrants an alert and
// manages the lifecycle of the persisted alert records.
package alerts

import (
	"fmt"

	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/stock"
)

const (
	criticalDaysThreshold = 7
	warningDaysThreshold  = 30
)

// Evaluation carries everything the severity decision needs for one
// component. DaysUntilMaintenance is nil when no MTBF is known; HasStock is
// false when the component has no linked inventory item, in which case the
// stock fields are meaningless and only the time signal is considered.
type Evaluation struct {
	Component            *db.MonitoredComponent
	DrivingAssetID       *string
	DaysUntilMaintenance *int
	HasStock             bool
	CurrentStock         int
	Requirement          stock.Requirement
	StockStatus          db.StockStatus
	LeadTimeDays         int
}

// Verdict is the outcome of evaluating one component. Triggered false means
// no alert condition holds and any existing ACTIVE alert should resolve.
type Verdict struct {
	Triggered      bool
	Severity       db.Severity
	Message        string
	Recommendation string
	Criticality    db.Criticality
}

func (e *Evaluation) criticality() db.Criticality {
	if e.Component.Criticality == nil {
		return db.CriticalityC
	}
	return *e.Component.Criticality
}

func (e *Evaluation) daysWithin(threshold int) bool {
	return e.DaysUntilMaintenance != nil && *e.DaysUntilMaintenance <= threshold
}

// Evaluate applies the severity precedence: CRITICAL for imminent failure or
// severe stock shortage on an A/B component, WARNING for a near-term horizon
// or low stock, INFO for any remaining trigger such as stock at the reorder
// point. Unknown projection never triggers on time.
func Evaluate(e *Evaluation) *Verdict {
	criticality := e.criticality()

	stockSevere := e.HasStock &&
		(e.StockStatus == db.StockOutOfStock || e.StockStatus == db.StockCritical)
	stockLow := e.HasStock && e.StockStatus == db.StockLow
	stockAtReorder := e.HasStock && stock.ShouldReorder(e.CurrentStock, e.Requirement.ReorderPoint)

	triggered := e.daysWithin(warningDaysThreshold) || stockSevere || stockLow || stockAtReorder
	if !triggered {
		return &Verdict{Triggered: false, Criticality: criticality}
	}

	var severity db.Severity
	switch {
	case (e.daysWithin(criticalDaysThreshold) || stockSevere) &&
		(criticality == db.CriticalityA || criticality == db.CriticalityB):
		severity = db.SeverityCritical
	case e.daysWithin(warningDaysThreshold) || stockLow:
		severity = db.SeverityWarning
	default:
		severity = db.SeverityInfo
	}

	return &Verdict{
		Triggered:      true,
		Severity:       severity,
		Message:        renderMessage(e),
		Recommendation: renderRecommendation(e, severity),
		Criticality:    criticality,
	}
}

func renderMessage(e *Evaluation) string {
	msg := fmt.Sprintf("Component %q", e.Component.Name)
	if e.DaysUntilMaintenance != nil {
		msg += fmt.Sprintf(" is projected to need replacement in %d days", *e.DaysUntilMaintenance)
	} else {
		msg += " has no failure-interval data for a time projection"
	}
	if e.HasStock {
		msg += fmt.Sprintf("; replacement stock is %d of a required minimum of %d (%s)",
			e.CurrentStock, e.Requirement.MinimumStock, e.StockStatus)
	}
	return msg
}

func renderRecommendation(e *Evaluation, severity db.Severity) string {
	if e.HasStock && e.StockStatus == db.StockOutOfStock {
		return fmt.Sprintf("Reorder immediately: no replacement stock on hand, resupply takes %d days", e.LeadTimeDays)
	}
	if severity == db.SeverityCritical {
		return "Schedule replacement now and expedite a purchase order"
	}
	if e.HasStock && stock.IsBelowMinimum(e.CurrentStock, e.Requirement.MinimumStock) {
		return fmt.Sprintf("Reorder soon: stock below minimum, recommended level is %d", e.Requirement.RecommendedStock)
	}
	if e.daysWithin(warningDaysThreshold) {
		return "Schedule replacement within the coming month"
	}
	return fmt.Sprintf("Stock at or below reorder point %d, place a purchase order", e.Requirement.ReorderPoint)
}

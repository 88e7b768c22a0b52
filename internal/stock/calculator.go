// Package stock derives replacement-inventory requirements from component
// failure statistics and procurement lead times, and classifies current
// stock levels against them.
package stock

import (
	"math"

	"github.com/fleetkeep/maintguard/internal/db"
)

const (
	// DefaultSafetyStockMultiplier sizes the safety buffer above minimum stock.
	DefaultSafetyStockMultiplier = 1.5

	hoursPerMonth = 720
	daysPerMonth  = 30
)

// criticalityFactors weights stock sizing by failure impact (ISO 14224
// A/B/C ranking). Kept as a literal table so the formula stays auditable.
var criticalityFactors = map[db.Criticality]int{
	db.CriticalityA: 3,
	db.CriticalityB: 2,
	db.CriticalityC: 1,
}

// CriticalityFactor returns the stock-sizing weight for a criticality.
// A missing criticality is treated as C, the least severe.
func CriticalityFactor(criticality *db.Criticality) int {
	if criticality == nil {
		return criticalityFactors[db.CriticalityC]
	}
	if factor, ok := criticalityFactors[*criticality]; ok {
		return factor
	}
	return criticalityFactors[db.CriticalityC]
}

// Requirement is the derived stock sizing for one component. All counts are
// non-negative integers; every fractional intermediate is rounded up so the
// sizing never under-provisions.
type Requirement struct {
	MinimumStock       int     `json:"minimum_stock"`
	SafetyStock        int     `json:"safety_stock"`
	ReorderPoint       int     `json:"reorder_point"`
	RecommendedStock   int     `json:"recommended_stock"`
	MonthlyConsumption int     `json:"monthly_consumption"`
	CriticalityFactor  int     `json:"criticality_factor"`
}

// CalculateMinimumStock derives the full stock requirement for a component.
// A missing or non-positive MTBF falls back to one failure per month, and a
// non-positive lead time is clamped to a one-month buffer.
func CalculateMinimumStock(criticality *db.Criticality, mtbfHours *float64, leadTimeDays int, safetyStockMultiplier float64) Requirement {
	factor := CriticalityFactor(criticality)

	monthlyConsumption := 1
	if mtbfHours != nil && *mtbfHours > 0 {
		monthlyConsumption = int(math.Ceil(hoursPerMonth / *mtbfHours))
	}

	leadTimeBufferMonths := 1
	if leadTimeDays > daysPerMonth {
		leadTimeBufferMonths = int(math.Ceil(float64(leadTimeDays) / daysPerMonth))
	}

	minimumStock := factor * monthlyConsumption * leadTimeBufferMonths
	safetyStock := int(math.Ceil(float64(minimumStock) * safetyStockMultiplier))

	usageDuringLeadTime := 0
	if leadTimeDays > 0 {
		usageDuringLeadTime = int(math.Ceil(float64(monthlyConsumption) * float64(leadTimeDays) / daysPerMonth))
	}

	reorderPoint := usageDuringLeadTime + safetyStock

	return Requirement{
		MinimumStock:       minimumStock,
		SafetyStock:        safetyStock,
		ReorderPoint:       reorderPoint,
		RecommendedStock:   reorderPoint + minimumStock,
		MonthlyConsumption: monthlyConsumption,
		CriticalityFactor:  factor,
	}
}

// Calculate applies the default safety stock multiplier.
func Calculate(criticality *db.Criticality, mtbfHours *float64, leadTimeDays int) Requirement {
	return CalculateMinimumStock(criticality, mtbfHours, leadTimeDays, DefaultSafetyStockMultiplier)
}

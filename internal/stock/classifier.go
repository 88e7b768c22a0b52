package stock

import (
	"github.com/fleetkeep/maintguard/internal/db"
)

const criticalStockFraction = 0.25

// Classify maps current stock against the calculated minimum to a status
// label. The boundaries are strict: stock exactly at minimum is HEALTHY, and
// stock exactly at a quarter of minimum is LOW, not CRITICAL.
func Classify(currentStock, minimumStock int) db.StockStatus {
	switch {
	case currentStock == 0:
		return db.StockOutOfStock
	case float64(currentStock) < float64(minimumStock)*criticalStockFraction:
		return db.StockCritical
	case currentStock < minimumStock:
		return db.StockLow
	default:
		return db.StockHealthy
	}
}

// IsBelowMinimum reports whether stock has fallen under the minimum level.
func IsBelowMinimum(currentStock, minimumStock int) bool {
	return currentStock < minimumStock
}

// ShouldReorder reports whether replenishment must be triggered. Reaching
// the reorder point itself already triggers, hence the non-strict compare.
func ShouldReorder(currentStock, reorderPoint int) bool {
	return currentStock <= reorderPoint
}

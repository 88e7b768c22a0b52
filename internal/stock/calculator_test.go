package stock

import (
	"testing"

	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/stretchr/testify/assert"
)

func criticalityPtr(c db.Criticality) *db.Criticality { return &c }
func floatPtr(f float64) *float64                     { return &f }

func TestCriticalityFactor_Ordering(t *testing.T) {
	a := CriticalityFactor(criticalityPtr(db.CriticalityA))
	b := CriticalityFactor(criticalityPtr(db.CriticalityB))
	c := CriticalityFactor(criticalityPtr(db.CriticalityC))

	assert.Equal(t, 3, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, c)
	assert.Greater(t, a, b)
	assert.Greater(t, b, c)
}

func TestCriticalityFactor_MissingDefaultsToC(t *testing.T) {
	assert.Equal(t, 1, CriticalityFactor(nil))
}

func TestCalculateMinimumStock_CriticalityA(t *testing.T) {
	req := Calculate(criticalityPtr(db.CriticalityA), floatPtr(360), 30)

	assert.Equal(t, 2, req.MonthlyConsumption)
	assert.Equal(t, 3, req.CriticalityFactor)
	assert.Equal(t, 6, req.MinimumStock)
	assert.Equal(t, 9, req.SafetyStock)
	assert.Equal(t, 11, req.ReorderPoint)
	assert.Equal(t, 17, req.RecommendedStock)
}

func TestCalculateMinimumStock_MissingInputs(t *testing.T) {
	req := Calculate(nil, nil, 10)

	assert.Equal(t, 1, req.MonthlyConsumption)
	assert.Equal(t, 1, req.CriticalityFactor)
	assert.Equal(t, 1, req.MinimumStock)
	assert.Equal(t, 2, req.SafetyStock)
	assert.Equal(t, 3, req.ReorderPoint)
	assert.Equal(t, 4, req.RecommendedStock)
}

func TestCalculateMinimumStock_LongLeadTime(t *testing.T) {
	// mtbf 500h -> 2 failures/month, 45 days lead -> 2 month buffer
	req := Calculate(criticalityPtr(db.CriticalityA), floatPtr(500), 45)

	assert.Equal(t, 2, req.MonthlyConsumption)
	assert.Equal(t, 12, req.MinimumStock)
}

func TestCalculateMinimumStock_NonPositiveLeadTimeClamped(t *testing.T) {
	req := Calculate(criticalityPtr(db.CriticalityB), floatPtr(720), -5)

	// lead time clamps to the one-month buffer rather than being rejected
	assert.Equal(t, 2, req.MinimumStock)
	assert.Equal(t, 3, req.SafetyStock)
	assert.Equal(t, 3, req.ReorderPoint)
}

func TestCalculateMinimumStock_NeverUnderProvisions(t *testing.T) {
	// ceiling rounding everywhere: 720/700 consumes 2/month, not 1
	req := Calculate(criticalityPtr(db.CriticalityC), floatPtr(700), 30)
	assert.Equal(t, 2, req.MonthlyConsumption)
}

func TestRecommendedStock_AlwaysHealthy(t *testing.T) {
	criticalities := []*db.Criticality{
		nil,
		criticalityPtr(db.CriticalityA),
		criticalityPtr(db.CriticalityB),
		criticalityPtr(db.CriticalityC),
	}
	mtbfs := []*float64{nil, floatPtr(100), floatPtr(360), floatPtr(5000)}
	leadTimes := []int{0, 7, 30, 45, 120}

	for _, crit := range criticalities {
		for _, mtbf := range mtbfs {
			for _, lead := range leadTimes {
				req := Calculate(crit, mtbf, lead)
				assert.Equal(t, db.StockHealthy, Classify(req.RecommendedStock, req.MinimumStock),
					"recommended stock must always cover the minimum")
				assert.GreaterOrEqual(t, req.RecommendedStock, req.ReorderPoint)
				assert.GreaterOrEqual(t, req.ReorderPoint, req.SafetyStock)
				assert.GreaterOrEqual(t, req.MinimumStock, 0)
			}
		}
	}
}

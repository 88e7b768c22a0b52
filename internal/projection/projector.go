// Package projection estimates how many days remain before a component is
// likely to require replacement.
package projection

import (
	"math"
)

// DefaultDailyUsageHours is the fixed usage heuristic applied when operating
// hours are derived from dates rather than a recorded counter. There is no
// per-asset override; assets are assumed to run a 12-hour duty cycle.
const DefaultDailyUsageHours = 12.0

// DaysUntilMaintenance projects the days remaining until the component
// reaches its mean time between failures. Returns nil when no MTBF is known:
// an unknown horizon must not be mistaken for an immediate one.
func DaysUntilMaintenance(mtbfHours *float64, operatingHours, dailyUsageHours float64) *int {
	if mtbfHours == nil || *mtbfHours <= 0 {
		return nil
	}
	if dailyUsageHours <= 0 {
		dailyUsageHours = DefaultDailyUsageHours
	}

	remainingHours := math.Max(*mtbfHours-operatingHours, 0)
	days := int(math.Ceil(remainingHours / dailyUsageHours))
	return &days
}

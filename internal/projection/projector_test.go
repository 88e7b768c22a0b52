package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestDaysUntilMaintenance(t *testing.T) {
	days := DaysUntilMaintenance(floatPtr(600), 240, 12)
	require.NotNil(t, days)
	assert.Equal(t, 30, *days)
}

func TestDaysUntilMaintenance_RoundsUp(t *testing.T) {
	// 100 remaining hours over 12h/day is 8.33 days, projected as 9
	days := DaysUntilMaintenance(floatPtr(100), 0, 12)
	require.NotNil(t, days)
	assert.Equal(t, 9, *days)
}

func TestDaysUntilMaintenance_OverdueClampsToZero(t *testing.T) {
	days := DaysUntilMaintenance(floatPtr(500), 800, 12)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)
}

func TestDaysUntilMaintenance_UnknownMTBF(t *testing.T) {
	assert.Nil(t, DaysUntilMaintenance(nil, 100, 12))
	assert.Nil(t, DaysUntilMaintenance(floatPtr(0), 100, 12))
	assert.Nil(t, DaysUntilMaintenance(floatPtr(-10), 100, 12))
}

func TestDaysUntilMaintenance_DefaultsDailyUsage(t *testing.T) {
	days := DaysUntilMaintenance(floatPtr(120), 0, 0)
	require.NotNil(t, days)
	assert.Equal(t, 10, *days)
}

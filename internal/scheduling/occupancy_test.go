package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		capacity *int
		enrolled int
		want     Tier
	}{
		{nil, 0, TierUnlimited},
		{nil, 500, TierUnlimited},
		{intPtr(0), 12, TierUnlimited},
		{intPtr(-3), 12, TierUnlimited},
		{intPtr(20), 0, TierAvailable},
		{intPtr(20), -4, TierAvailable},
		{intPtr(20), 9, TierAvailable},
		{intPtr(20), 10, TierPartial},
		{intPtr(20), 15, TierPartial},
		{intPtr(20), 16, TierNearlyFull},
		{intPtr(20), 18, TierNearlyFull},
		{intPtr(20), 19, TierNearlyFull},
		{intPtr(20), 20, TierFull},
		{intPtr(20), 35, TierFull},
		{intPtr(3), 1, TierAvailable},
		{intPtr(3), 2, TierPartial},
		{intPtr(1), 0, TierAvailable},
		{intPtr(1), 1, TierFull},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.capacity, tc.enrolled), "capacity=%v enrolled=%d", tc.capacity, tc.enrolled)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	for capacity := 1; capacity <= 40; capacity++ {
		previous := -1
		for enrolled := -2; enrolled <= capacity*2; enrolled++ {
			rank := Classify(intPtr(capacity), enrolled).Rank()
			assert.GreaterOrEqual(t, rank, previous, "capacity=%d enrolled=%d", capacity, enrolled)
			previous = rank
		}
	}
}

func TestSnapshotRatio(t *testing.T) {
	ratio, ok := Snapshot{Capacity: intPtr(20), Enrolled: 18}.Ratio()
	assert.True(t, ok)
	assert.InDelta(t, 0.9, ratio, 1e-9)

	_, ok = Snapshot{Enrolled: 18}.Ratio()
	assert.False(t, ok)

	assert.Equal(t, TierNearlyFull, Snapshot{Capacity: intPtr(20), Enrolled: 18}.Tier())
}

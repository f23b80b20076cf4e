package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFare_RushAndNight_ComposesMultiplicatively(t *testing.T) {
	// GIVEN base fare 2, rush 1.5, night 2.0
	cfg := DefaultRouteConfig().Fares

	// WHEN the fare is computed at 08:00 on a night service
	got := ComputeFare(8, true, MarketNormal, cfg)

	// THEN it is ceil(2 * 1.5 * 2.0)
	assert.Equal(t, 6, got)
}

func TestComputeFare_Table(t *testing.T) {
	cfg := DefaultRouteConfig().Fares
	tests := []struct {
		name   string
		hour   float64
		night  bool
		market MarketCondition
		want   int
	}{
		{"plain day", 12, false, MarketNormal, 2},
		{"rush only", 17.5, false, MarketNormal, 3},
		{"night only", 23, true, MarketNormal, 4},
		{"crackdown only", 12, false, MarketCrackdown, 3},
		{"festival has no effect", 12, false, MarketFestival, 2},
		{"all three", 8, true, MarketCrackdown, 8},
		{"rush window end is exclusive", 9, false, MarketNormal, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeFare(tt.hour, tt.night, tt.market, cfg))
		})
	}
}

func TestApplyMultipliers_OrderIndependent(t *testing.T) {
	// GIVEN every permutation of the three multipliers
	perms := [][]float64{
		{2.0, 1.5, 1.25},
		{2.0, 1.25, 1.5},
		{1.5, 2.0, 1.25},
		{1.5, 1.25, 2.0},
		{1.25, 2.0, 1.5},
		{1.25, 1.5, 2.0},
	}
	for _, base := range []int{1, 2, 3, 7, 13} {
		want := applyMultipliers(base, perms[0])
		for _, p := range perms[1:] {
			// THEN the fare is the same regardless of order
			assert.Equal(t, want, applyMultipliers(base, p), "base=%d order=%v", base, p)
		}
	}
}

func TestComputeFare_Monotonic_InActiveMultipliers(t *testing.T) {
	// GIVEN any combination of conditions
	cfg := DefaultRouteConfig().Fares
	for _, base := range []int{1, 2, 5} {
		cfg.BaseFare = base
		for _, night := range []bool{false, true} {
			for _, hour := range []float64{3, 8, 12, 18} {
				plain := ComputeFare(hour, night, MarketNormal, cfg)
				// WHEN a crackdown is added
				withCrackdown := ComputeFare(hour, night, MarketCrackdown, cfg)
				// THEN the fare does not drop
				assert.GreaterOrEqual(t, withCrackdown, plain)
				if !night {
					assert.GreaterOrEqual(t, ComputeFare(hour, true, MarketNormal, cfg), plain)
				}
			}
		}
	}
}

func TestComputeFare_NeverBelowOne(t *testing.T) {
	cfg := FareConfig{BaseFare: 1, NightMultiplier: 1, RushMultiplier: 1, CrackdownMultiplier: 1}
	assert.Equal(t, 1, ComputeFare(0, false, MarketNormal, cfg))
	assert.Equal(t, 1, applyMultipliers(0, nil))
}

func TestIsRushHour_IgnoresDegenerateWindow(t *testing.T) {
	assert.False(t, isRushHour(12, []HourWindow{{Start: 4, End: 4}}))
	assert.True(t, isRushHour(7, []HourWindow{{Start: 4, End: 4}, {Start: 7, End: 9}}))
}
